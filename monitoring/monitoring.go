package monitoring

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bolt-observer/eclair-adapter/lightning"
	"github.com/bolt-observer/graphite-golang"
	"github.com/golang/glog"
)

// PREFIX is the prefix for all metrics.
const PREFIX = "eclair.adapter"

// Monitoring sends agent metrics to graphite.
type Monitoring struct {
	graphite *graphite.Graphite
	env      string
	name     string
}

func nop(host string, port int, log bool) *graphite.Graphite {
	g := graphite.NewGraphiteNop(host, port)
	g.DisableLog = !log
	return g
}

// NewNopMonitoring constructs a Monitoring that does nothing.
func NewNopMonitoring(name string) *Monitoring {
	return &Monitoring{graphite: nop("", 2003, false), name: name}
}

// NewMonitoring constructs a Monitoring reporting over UDP, or a nop one when host is empty.
func NewMonitoring(name, env, graphiteHost, graphitePort string) *Monitoring {
	port, err := strconv.Atoi(graphitePort)
	if err != nil {
		port = 0
	}

	if graphiteHost == "" {
		return &Monitoring{graphite: nop(graphiteHost, port, false), env: env, name: name}
	}

	g, err := graphite.NewGraphiteUDP(graphiteHost, port)
	if err == nil {
		err = g.Connect()
	}
	if err != nil {
		glog.Warningf("Graphite %s:%d unavailable: %v", graphiteHost, port, err)
		g = nop(graphiteHost, port, true)
	}

	return &Monitoring{graphite: g, env: env, name: name}
}

// IsNop tells whether metrics are discarded
func (m *Monitoring) IsNop() bool {
	return m.graphite.IsNop()
}

func (m *Monitoring) tags(tags map[string]string) map[string]string {
	ret := make(map[string]string, len(tags)+1)
	for k, v := range tags {
		ret[k] = v
	}
	ret["env"] = m.env

	return ret
}

func (m *Monitoring) metric(name, val string, tags map[string]string) graphite.Metric {
	return graphite.NewMetricWithTags(fmt.Sprintf("%s.%s.%s", PREFIX, m.name, name), val, time.Now().Unix(), tags)
}

// MetricsTimer times a call, use as defer m.MetricsTimer("getchannels", nil)()
func (m *Monitoring) MetricsTimer(name string, tags map[string]string) func() {
	tags = m.tags(tags)

	start := time.Now()
	return func() {
		duration := time.Since(start)
		glog.V(2).Infof("Method %s took %d milliseconds", name, duration.Milliseconds())
		m.graphite.SendMetrics([]graphite.Metric{
			m.metric(name+".duration", strconv.FormatInt(duration.Milliseconds(), 10), tags),
			m.metric(name+".invocation", "1", tags),
		})
	}
}

// MetricsReport counts one occurrence of val under name.
func (m *Monitoring) MetricsReport(name, val string, tags map[string]string) {
	m.graphite.SendMetrics([]graphite.Metric{
		m.metric(name+"."+val, "1", m.tags(tags)),
	})
}

// ChannelMetrics turns a channel list of node into balance gauges
func (m *Monitoring) ChannelMetrics(node string, channels []lightning.Channel) []graphite.Metric {
	tags := m.tags(map[string]string{"node": node})

	metrics := make([]graphite.Metric, 0, 1+3*len(channels))
	metrics = append(metrics, m.metric(node+".channels.count", strconv.Itoa(len(channels)), tags))

	for _, one := range channels {
		chanTags := m.tags(map[string]string{"node": node, "peer": one.PubKey, "state": string(one.State)})
		prefix := fmt.Sprintf("%s.channel.%s", node, one.ID)

		metrics = append(metrics,
			m.metric(prefix+".capacity", one.Capacity, chanTags),
			m.metric(prefix+".local_balance", one.LocalBalance, chanTags),
			m.metric(prefix+".remote_balance", one.RemoteBalance, chanTags),
		)
	}

	return metrics
}

// ReportChannels sends the balance gauges of node
func (m *Monitoring) ReportChannels(node string, channels []lightning.Channel) {
	if err := m.graphite.SendMetrics(m.ChannelMetrics(node, channels)); err != nil {
		glog.V(2).Infof("Sending metrics failed: %v", err)
	}
}
