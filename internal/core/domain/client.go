package domain

// ClientKeyPrefix is the prefix of generated client keys. Values carrying
// this prefix are treated as sensitive by the logger redaction.
const ClientKeyPrefix = "ck_"

// ClientRecord describes one external consumer identified by an opaque
// bearer key. The key itself is the registry map key and is never stored
// inside the record.
type ClientRecord struct {
	// Name is a human-readable label for the consumer.
	Name string `json:"name"`

	// AllowedServices is the set of aliases this key may reach.
	// An empty set means every registered alias is allowed.
	AllowedServices []string `json:"services"`

	// Disabled blocks all requests for this key regardless of the
	// other fields.
	Disabled bool `json:"disabled"`

	// WhereLock maps an alias to a filter fragment that is silently
	// conjoined to every query filter for that alias.
	WhereLock map[string]string `json:"where_lock,omitempty"`
}

// Allows reports whether the record permits access to the given alias.
// Disabled records never allow anything.
func (c *ClientRecord) Allows(alias string) bool {
	if c.Disabled {
		return false
	}
	if len(c.AllowedServices) == 0 {
		return true
	}
	for _, a := range c.AllowedServices {
		if a == alias {
			return true
		}
	}
	return false
}

// LockFor returns the configured where-lock fragment for the alias,
// or an empty string if none is configured.
func (c *ClientRecord) LockFor(alias string) string {
	if c.WhereLock == nil {
		return ""
	}
	return c.WhereLock[alias]
}

// Clone returns a deep copy of the client record.
func (c *ClientRecord) Clone() *ClientRecord {
	n := *c
	n.AllowedServices = append([]string(nil), c.AllowedServices...)
	if c.WhereLock != nil {
		n.WhereLock = make(map[string]string, len(c.WhereLock))
		for k, v := range c.WhereLock {
			n.WhereLock[k] = v
		}
	}
	return &n
}
