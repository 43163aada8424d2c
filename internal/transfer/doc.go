// Package transfer fetches assets with retries and a global concurrency cap.
//
// A Loader resolves each URL through a urlresolver.Resolver, fetches it with
// a Fetcher and hands the wrapped result to a completion callback:
//
//	loader := transfer.NewLoader(http.NewClient(http.Options{}), resolver, transfer.Options{}, logger)
//	loader.Load(ctx, "images/icon.png", func(res *model.Resource) {
//	    if res == nil {
//	        // every attempt failed
//	    }
//	}, nil, nil)
//
// A failed fetch is retried up to MaxRetries times with an exponential
// cooldown between attempts. After that the callback receives nil. Loads
// cancelled with Cancel never call their callback.
package transfer
