package clash

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Snapshot is one fetch of the daemon's proxies mapping. JSON objects
// decoded into a Go map lose key order, so the snapshot decodes the
// object token-wise and keeps the server's key order for display.
type Snapshot struct {
	names   []string
	entries map[string]Proxy
}

// UnmarshalJSON decodes the proxies object preserving key order.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("proxies: expected object, got %v", tok)
	}

	s.names = nil
	s.entries = make(map[string]Proxy)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("proxies: expected string key, got %v", keyTok)
		}

		var entry Proxy
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("proxies: entry %q: %w", name, err)
		}
		if entry.Name == "" {
			entry.Name = name
		}

		// A duplicate key keeps its first position; the later value wins.
		if _, seen := s.entries[name]; !seen {
			s.names = append(s.names, name)
		}
		s.entries[name] = entry
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// Len returns the number of entries in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.names)
}

// Get returns the named entry.
func (s *Snapshot) Get(name string) (Proxy, bool) {
	entry, ok := s.entries[name]
	return entry, ok
}

// Groups returns the policy groups in server order.
func (s *Snapshot) Groups() []Proxy {
	return s.partition(true)
}

// Nodes returns the leaf nodes in server order.
func (s *Snapshot) Nodes() []Proxy {
	return s.partition(false)
}

func (s *Snapshot) partition(wantGroup bool) []Proxy {
	var out []Proxy
	for _, name := range s.names {
		if entry := s.entries[name]; entry.IsGroup() == wantGroup {
			out = append(out, entry)
		}
	}
	return out
}
