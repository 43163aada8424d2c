package assets

import "errors"

var (
	// ErrNoTaskKind is reported when no registered kind matches an asset.
	// The asset is skipped and the session continues.
	ErrNoTaskKind = errors.New("no task kind matches asset")

	// ErrMissingID is returned when a task added to a map-mode session has
	// no id.
	ErrMissingID = errors.New("asset in map mode has no id")

	// ErrUnsupportedRequest is returned when a request is neither a single
	// asset nor a slice or string-keyed map of assets.
	ErrUnsupportedRequest = errors.New("unsupported load request")

	// ErrInvalidKind is returned when registering a kind without a Match or
	// New function.
	ErrInvalidKind = errors.New("invalid task kind")

	// ErrSessionRunning is returned when starting a session twice.
	ErrSessionRunning = errors.New("session already running")

	// ErrNoResolver is returned by LoadVersions when the loader has no URL
	// resolver to register versions with.
	ErrNoResolver = errors.New("loader has no URL resolver")

	// ErrVersionsUnavailable is returned when the version manifest could not
	// be fetched.
	ErrVersionsUnavailable = errors.New("version manifest unavailable")

	errNotLoaded  = errors.New("resource not loaded")
	errNotAnImage = errors.New("resource is not an image")
)
