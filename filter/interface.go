package filter

// Options is a bitmask of channel classes that pass regardless of the whitelist
type Options uint8

const (
	// None lets through only what is whitelisted
	None Options = 0
	// AllowAllPrivate lets through every private channel
	AllowAllPrivate Options = 1 << iota
	// AllowAllPublic lets through every public channel
	AllowAllPublic
)

// FilteringInterface decides which channels are reported
type FilteringInterface interface {
	AllowPubKey(id string) bool
	AllowChanID(id string) bool
	AllowSpecial(private bool) bool
}

// Filter is the in-memory whitelist shared by the implementations
type Filter struct {
	Options         Options
	chanIDWhitelist map[string]struct{}
	nodeIDWhitelist map[string]struct{}
}

// AllowPubKey checks whether the remote node is whitelisted
func (f *Filter) AllowPubKey(id string) bool {
	_, ok := f.nodeIDWhitelist[id]
	return ok
}

// AllowChanID checks whether the channel id is whitelisted
func (f *Filter) AllowChanID(id string) bool {
	_, ok := f.chanIDWhitelist[id]
	return ok
}

// AllowSpecial checks the options bitmask
func (f *Filter) AllowSpecial(private bool) bool {
	if private {
		return f.Options&AllowAllPrivate == AllowAllPrivate
	}
	return f.Options&AllowAllPublic == AllowAllPublic
}
