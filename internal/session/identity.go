package session

// Identity is the current user's ownership identity, derived from the
// persisted session record.
type Identity struct {
	ID   string
	Name string
}

// Resolver derives the current identity from a session store. It is read-only
// and fails soft: a missing or malformed record resolves to "not logged in",
// never an error.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Current returns the identity and whether one is present. The store is read
// on every call so a login or logout between calls is always reflected.
func (r *Resolver) Current() (Identity, bool) {
	if r == nil || r.store == nil {
		return Identity{}, false
	}
	record, err := r.store.Load()
	if err != nil {
		return Identity{}, false
	}
	if record.UserID == "" {
		return Identity{}, false
	}
	return Identity{ID: record.UserID, Name: record.UserName}, true
}

// Token returns the persisted bearer token, or "" when absent. It backs the
// API client's token source.
func (r *Resolver) Token() string {
	if r == nil || r.store == nil {
		return ""
	}
	record, err := r.store.Load()
	if err != nil {
		return ""
	}
	return record.Token
}
