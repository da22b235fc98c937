package bpcache

// Hooks are lightweight callbacks for pool events.
// Implementations MUST be cheap and non-blocking; the pool calls them inline.
// storageKey is always the prefixed key.
type Hooks interface {
	// GetItem found a stored value.
	Hit(storageKey string)

	// GetItem found nothing.
	Miss(storageKey string)

	// Stored bytes could not be decoded by the codec.
	DecodeError(storageKey string, err error)

	// The store answered ok=false to a write.
	SaveRejected(storageKey string)

	// Clear listed a key that was already gone when deleted.
	ClearMiss(storageKey string)

	// A deferred save failed with an error during Commit.
	CommitFailed(storageKey string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) Hit(string)                 {}
func (NopHooks) Miss(string)                {}
func (NopHooks) DecodeError(string, error)  {}
func (NopHooks) SaveRejected(string)        {}
func (NopHooks) ClearMiss(string)           {}
func (NopHooks) CommitFailed(string, error) {}
