package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/golang/glog"
	"github.com/mitchellh/hashstructure/v2"
	cli "github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/bolt-observer/eclair-adapter/entities"
	"github.com/bolt-observer/eclair-adapter/filter"
	"github.com/bolt-observer/eclair-adapter/lightning"
	"github.com/bolt-observer/eclair-adapter/monitoring"
	utils "github.com/bolt-observer/go_common/utils"
)

var (
	// GitRevision is set with build
	GitRevision = "unknownVersion"

	defaultNetworkFile = utils.GetEnvWithDefault("ECLAIR_NETWORK", "~/.eclair-agent/network.json")

	// newAPI is replaced in tests
	newAPI = func(impl entities.Implementation) (lightning.LightningAPI, error) {
		return lightning.NewAPI(impl, nil, nil)
	}
)

type nodeAction func(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error)

func getApp() *cli.App {
	app := cli.NewApp()
	app.Version = GitRevision
	app.Name = "eclair-agent"
	app.Usage = "Utility to query and drive eclair nodes of a network"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "network",
			Value: defaultNetworkFile,
			Usage: "path to the network description (env ECLAIR_NETWORK)",
		},
		&cli.StringFlag{
			Name:  "node, n",
			Usage: "name of the node to talk to",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Value: 2 * time.Minute,
			Usage: "overall timeout of a command",
		},
		&cli.DurationFlag{
			Name:   "payment-poll",
			Value:  lightning.DefaultPaymentPollInterval,
			Usage:  "interval between payment status checks",
			Hidden: true,
		},
		&cli.DurationFlag{
			Name:  "payment-timeout",
			Value: lightning.DefaultPaymentTimeout,
			Usage: "how long to wait for a payment to settle",
		},
		&cli.StringFlag{
			Name:  "graphite-host",
			Value: utils.GetEnvWithDefault("GRAPHITE_HOST", ""),
			Usage: "graphite host for watch metrics, none when empty (env GRAPHITE_HOST)",
		},
		&cli.StringFlag{
			Name:   "graphite-port",
			Value:  utils.GetEnvWithDefault("GRAPHITE_PORT", "2003"),
			Usage:  "graphite port (env GRAPHITE_PORT)",
			Hidden: true,
		},
	}

	whitelist := &cli.StringFlag{
		Name:  "channel-whitelist",
		Usage: "path to a file with pubkeys, channel ids, private or public, one per line",
	}

	app.Flags = append(app.Flags, entities.GlogFlags...)
	app.Before = entities.GlogShim

	app.Commands = []cli.Command{
		{
			Name:  "info",
			Usage: "show node info",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "all", Usage: "query every node of the network concurrently"},
			},
			Action: infoAction,
		},
		{
			Name:   "balances",
			Usage:  "show on-chain balances (from the node's bitcoind backend)",
			Action: withNode(balances),
		},
		{
			Name:   "newaddress",
			Usage:  "get a new on-chain address",
			Action: withNode(newAddress),
		},
		{
			Name:   "channels",
			Usage:  "list channels",
			Flags:  []cli.Flag{whitelist},
			Action: withNode(channels),
		},
		{
			Name:   "peers",
			Usage:  "list peers",
			Action: withNode(peers),
		},
		{
			Name:      "connect",
			Usage:     "connect to peers that are not connected yet",
			ArgsUsage: "pubkey@host:port [pubkey@host:port...]",
			Action:    withNode(connect),
		},
		{
			Name:  "openchannel",
			Usage: "open a channel",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "to", Usage: "pubkey@host:port or name of a node in the network"},
				&cli.Int64Flag{Name: "amount", Usage: "capacity in satoshis"},
				&cli.BoolFlag{Name: "private", Usage: "do not announce the channel"},
			},
			Action: withNode(openChannel),
		},
		{
			Name:      "closechannel",
			Usage:     "close a channel",
			ArgsUsage: "channel-id",
			Action:    withNode(closeChannel),
		},
		{
			Name:  "invoice",
			Usage: "create an invoice",
			Flags: []cli.Flag{
				&cli.Int64Flag{Name: "amount", Usage: "amount in satoshis"},
				&cli.StringFlag{Name: "memo", Usage: "description (default: Payment to <node>)"},
			},
			Action: withNode(createInvoice),
		},
		{
			Name:      "pay",
			Usage:     "pay an invoice and wait for settlement",
			ArgsUsage: "invoice",
			Flags: []cli.Flag{
				&cli.Int64Flag{Name: "amount", Usage: "amount in satoshis, overrides the invoice amount"},
			},
			Action: withNode(payInvoice),
		},
		{
			Name:  "wait",
			Usage: "wait until the node responds",
			Flags: []cli.Flag{
				&cli.DurationFlag{Name: "interval", Value: lightning.DefaultOnlineInterval, Usage: "interval between attempts"},
				&cli.DurationFlag{Name: "timeout", Value: lightning.DefaultOnlineTimeout, Usage: "give up after this long"},
			},
			Action: withNode(waitOnline),
		},
		{
			Name:  "watch",
			Usage: "poll channels and print them whenever they change",
			Flags: []cli.Flag{
				&cli.DurationFlag{Name: "interval", Value: 10 * time.Second, Usage: "poll interval"},
				whitelist,
			},
			Action: watchAction,
		},
	}

	return app
}

func initSentry() func() {
	dsn := utils.GetEnvWithDefault("SENTRY_DSN", "")
	if dsn == "" {
		return func() {}
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:     dsn,
		Release: fmt.Sprintf("eclair-agent@%s", GitRevision),
	})
	if err != nil {
		glog.Warningf("Sentry init failed: %v", err)
		return func() {}
	}

	return func() { sentry.Flush(2 * time.Second) }
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}

func getAPI(cmdCtx *cli.Context, impl entities.Implementation) (lightning.LightningAPI, error) {
	api, err := newAPI(impl)
	if err != nil {
		return nil, err
	}

	if eclair, ok := api.(*lightning.EclairAPI); ok {
		eclair.PaymentPollInterval = cmdCtx.GlobalDuration("payment-poll")
		eclair.PaymentTimeout = cmdCtx.GlobalDuration("payment-timeout")
	}

	return api, nil
}

func commandContext(cmdCtx *cli.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	timeout := cmdCtx.GlobalDuration("timeout")
	if timeout <= 0 {
		return ctx, stop
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func loadNode(cmdCtx *cli.Context) (*entities.Network, *entities.Node, error) {
	network, err := entities.LoadNetwork(cmdCtx.GlobalString("network"))
	if err != nil {
		return nil, nil, err
	}

	name := cmdCtx.GlobalString("node")
	if name == "" {
		return nil, nil, fmt.Errorf("missing node (use --node)")
	}

	node, err := network.Node(name)
	if err != nil {
		return nil, nil, err
	}

	return network, node, nil
}

func withNode(action nodeAction) func(cmdCtx *cli.Context) error {
	return func(cmdCtx *cli.Context) error {
		network, node, err := loadNode(cmdCtx)
		if err != nil {
			return err
		}

		api, err := getAPI(cmdCtx, node.Implementation)
		if err != nil {
			return err
		}

		ctx, cancel := commandContext(cmdCtx)
		defer cancel()

		result, err := action(ctx, cmdCtx, api, network, node)
		if err != nil {
			return err
		}

		if result == nil {
			return nil
		}

		return printJSON(cmdCtx.App.Writer, result)
	}
}

func infoAction(cmdCtx *cli.Context) error {
	if !cmdCtx.Bool("all") {
		return withNode(info)(cmdCtx)
	}

	network, err := entities.LoadNetwork(cmdCtx.GlobalString("network"))
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmdCtx)
	defer cancel()

	results := make([]*lightning.NodeInfo, len(network.Nodes))

	g, gctx := errgroup.WithContext(ctx)
	for i := range network.Nodes {
		i := i
		node := &network.Nodes[i]

		api, err := getAPI(cmdCtx, node.Implementation)
		if err != nil {
			return err
		}

		g.Go(func() error {
			info, err := api.GetInfo(gctx, node)
			if err != nil {
				return fmt.Errorf("%s: %w", node.Name, err)
			}
			results[i] = info
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	all := make(map[string]*lightning.NodeInfo, len(results))
	for i, one := range results {
		all[network.Nodes[i].Name] = one
	}

	return printJSON(cmdCtx.App.Writer, all)
}

func info(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error) {
	return api.GetInfo(ctx, node)
}

func balances(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error) {
	return api.GetBalances(ctx, node, network.BackendFor(node))
}

func newAddress(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error) {
	return api.GetNewAddress(ctx, node)
}

// getFilter follows the whitelist file until ctx is done, nil means no filtering
func getFilter(ctx context.Context, cmdCtx *cli.Context) (filter.FilteringInterface, error) {
	path := cmdCtx.String("channel-whitelist")
	if path == "" {
		return nil, nil
	}

	return filter.NewFilterFromFile(ctx, entities.CleanAndExpandPath(path), filter.None)
}

func channels(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error) {
	f, err := getFilter(ctx, cmdCtx)
	if err != nil {
		return nil, err
	}

	list, err := api.GetChannels(ctx, node)
	if err != nil {
		return nil, err
	}

	return filter.Channels(f, list), nil
}

func peers(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error) {
	return api.GetPeers(ctx, node)
}

func connect(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error) {
	if cmdCtx.NArg() == 0 {
		return nil, fmt.Errorf("nothing to connect to")
	}

	return nil, api.ConnectPeers(ctx, node, cmdCtx.Args())
}

// resolveRPCURL accepts pubkey@host:port or the name of another node of the network
func resolveRPCURL(ctx context.Context, api lightning.LightningAPI, network *entities.Network, to string) (string, error) {
	if _, _, err := lightning.SplitRPCURL(to); err == nil {
		return to, nil
	}

	other, err := network.Node(to)
	if err != nil {
		return "", fmt.Errorf("%s is neither a node uri nor a node name", to)
	}

	info, err := api.GetInfo(ctx, other)
	if err != nil {
		return "", err
	}

	if info.RPCURL == "" {
		return "", fmt.Errorf("node %s does not advertise an address", other.Name)
	}

	return info.RPCURL, nil
}

func openChannel(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error) {
	to, err := resolveRPCURL(ctx, api, network, cmdCtx.String("to"))
	if err != nil {
		return nil, err
	}

	return api.OpenChannel(ctx, lightning.OpenChannelRequest{
		From:       node,
		ToRPCURL:   to,
		AmountSats: cmdCtx.Int64("amount"),
		IsPrivate:  cmdCtx.Bool("private"),
	})
}

func closeChannel(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error) {
	result, err := api.CloseChannel(ctx, node, cmdCtx.Args().First())
	if err != nil {
		return nil, err
	}

	return map[string]string{"result": result}, nil
}

func createInvoice(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error) {
	invoice, err := api.CreateInvoice(ctx, node, cmdCtx.Int64("amount"), cmdCtx.String("memo"))
	if err != nil {
		return nil, err
	}

	return map[string]string{"invoice": invoice}, nil
}

func payInvoice(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error) {
	var sats *int64
	if cmdCtx.IsSet("amount") {
		amount := cmdCtx.Int64("amount")
		sats = &amount
	}

	return api.PayInvoice(ctx, node, cmdCtx.Args().First(), sats)
}

func waitOnline(ctx context.Context, cmdCtx *cli.Context, api lightning.LightningAPI, network *entities.Network, node *entities.Node) (any, error) {
	err := api.WaitUntilOnline(ctx, node, cmdCtx.Duration("interval"), cmdCtx.Duration("timeout"))
	if err != nil {
		return nil, err
	}

	return map[string]bool{"online": true}, nil
}

// channelWatcher remembers the hash of the last channel list it reported
type channelWatcher struct {
	hash uint64
}

// changed tells whether channels differ from what was seen last time
func (w *channelWatcher) changed(channels []lightning.Channel) bool {
	hash, err := hashstructure.Hash(channels, hashstructure.FormatV2, nil)
	if err != nil {
		glog.Warning("Hash could not be determined")
		return true
	}

	if hash == w.hash {
		return false
	}

	w.hash = hash
	return true
}

func watchAction(cmdCtx *cli.Context) error {
	_, node, err := loadNode(cmdCtx)
	if err != nil {
		return err
	}

	api, err := getAPI(cmdCtx, node.Implementation)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	f, err := getFilter(ctx, cmdCtx)
	if err != nil {
		return err
	}

	mon := monitoring.NewMonitoring("eclair-agent", GitRevision, cmdCtx.GlobalString("graphite-host"), cmdCtx.GlobalString("graphite-port"))

	return watch(ctx, cmdCtx.App.Writer, api, node, cmdCtx.Duration("interval"), f, mon)
}

func getChannels(ctx context.Context, api lightning.LightningAPI, node *entities.Node, mon *monitoring.Monitoring) ([]lightning.Channel, error) {
	defer mon.MetricsTimer("getchannels", map[string]string{"node": node.Name})()

	channels, err := api.GetChannels(ctx, node)
	if err != nil {
		mon.MetricsReport("getchannels", "failure", map[string]string{"node": node.Name})
	}

	return channels, err
}

func watch(ctx context.Context, w io.Writer, api lightning.LightningAPI, node *entities.Node, interval time.Duration, f filter.FilteringInterface, mon *monitoring.Monitoring) error {
	if interval <= 0 {
		return fmt.Errorf("invalid watch interval %v", interval)
	}

	watcher := &channelWatcher{}

	check := func() error {
		channels, err := getChannels(ctx, api, node, mon)
		if err != nil {
			glog.Warningf("Failed to get channels of %s: %v", node.Name, err)
			return nil
		}

		channels = filter.Channels(f, channels)
		mon.ReportChannels(node.Name, channels)

		if !watcher.changed(channels) {
			return nil
		}

		return printJSON(w, channels)
	}

	if err := check(); err != nil {
		return err
	}

	// nosemgrep
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := check(); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func main() {
	app := getApp()

	flush := initSentry()
	defer flush()

	if err := app.Run(os.Args); err != nil {
		if errors.Is(err, lightning.ErrConfiguration) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		glog.Error(err)
		flush()
		os.Exit(1)
	}
}
