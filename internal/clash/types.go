package clash

// Group kinds as reported by the daemon's `type` field. Any entry whose
// type is one of these is a policy group; everything else is a leaf node.
const (
	TypeSelector    = "Selector"
	TypeURLTest     = "URLTest"
	TypeFallback    = "Fallback"
	TypeLoadBalance = "LoadBalance"
)

// Proxy is a single entry from the daemon's proxies mapping. It is a
// tagged union discriminated by Type: groups carry Now and All, leaf
// nodes carry the transport protocol in Type and the UDP flag.
type Proxy struct {
	Name string   `json:"name"`
	Type string   `json:"type"`
	Now  string   `json:"now,omitempty"`
	All  []string `json:"all,omitempty"`
	UDP  bool     `json:"udp,omitempty"`
}

// IsGroup reports whether the entry is a selectable policy group.
func (p Proxy) IsGroup() bool {
	switch p.Type {
	case TypeSelector, TypeURLTest, TypeFallback, TypeLoadBalance:
		return true
	}
	return false
}
