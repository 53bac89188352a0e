package filter

// AllowAllFilter lets every channel through.
type AllowAllFilter struct {
	Filter
}

// NewAllowAllFilter - creates a filter that allows everything.
func NewAllowAllFilter() (FilteringInterface, error) {
	return &AllowAllFilter{}, nil
}

// AllowPubKey returns true for every pubkey.
func (f *AllowAllFilter) AllowPubKey(id string) bool {
	return true
}

// AllowChanID returns true for every channel id.
func (f *AllowAllFilter) AllowChanID(id string) bool {
	return true
}

// AllowSpecial returns true for private and public channels alike.
func (f *AllowAllFilter) AllowSpecial(private bool) bool {
	return true
}

// UnitTestFilter is a whitelist filled programmatically.
type UnitTestFilter struct {
	Filter
}

// NewUnitTestFilter - creates a filter suitable for unit tests.
func NewUnitTestFilter() *UnitTestFilter {
	return &UnitTestFilter{
		Filter: Filter{
			chanIDWhitelist: make(map[string]struct{}),
			nodeIDWhitelist: make(map[string]struct{}),
		},
	}
}

// AddAllowPubKey - add pubkey to allow list.
func (u *UnitTestFilter) AddAllowPubKey(id string) {
	u.nodeIDWhitelist[id] = struct{}{}
}

// AddAllowChanID - add channel id to allow list.
func (u *UnitTestFilter) AddAllowChanID(id string) {
	u.chanIDWhitelist[id] = struct{}{}
}

// ChangeOptions - change options of the filter.
func (u *UnitTestFilter) ChangeOptions(options Options) {
	u.Options = options
}
