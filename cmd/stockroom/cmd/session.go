package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"github.com/jmcleod/stockroom/client"
	"github.com/jmcleod/stockroom/storage"
	bboltstorage "github.com/jmcleod/stockroom/storage/bbolt"
	"github.com/jmcleod/stockroom/storage/sealed"
)

// session is an open session store plus a client bound to it.
type session struct {
	client *client.Client
	close  func() error
}

// openSession opens the session file in the data directory, sealing values
// when a session secret is configured, and builds a client over it.
func openSession(stderr io.Writer) (*session, error) {
	if err := os.MkdirAll(cfg.Session.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := bboltstorage.NewStoreFromFile(cfg.Session.StorePath(), &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	var store storage.Store = db
	closeFn := db.Close
	if cfg.Session.Secret != "" {
		s, err := sealed.New(db, []byte(cfg.Session.Secret))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to seal session store: %w", err)
		}
		store = s
		closeFn = func() error {
			s.Destroy()
			return db.Close()
		}
	}

	c, err := client.New(store,
		client.WithBaseURL(cfg.API.BaseURL),
		client.WithRefreshURL(cfg.API.RefreshURL),
		client.WithTokenPath(cfg.API.TokenPath),
		client.WithTimeout(cfg.API.TimeoutDuration()),
		client.WithCoalescedRefresh(cfg.API.CoalesceRefresh),
		client.WithNavigator(loginNotice(stderr)),
		client.WithLogger(logger),
	)
	if err != nil {
		closeFn()
		return nil, err
	}
	return &session{client: c, close: closeFn}, nil
}

// loginNotice is the CLI's navigator: there is no page to show, so it tells
// the user how to get back to one.
func loginNotice(w io.Writer) client.Navigator {
	return client.NavigatorFunc(func(path string) {
		if path == client.LoginPath {
			fmt.Fprintln(w, "Signed out. Run `stockroom login` to sign in again.")
			return
		}
		fmt.Fprintf(w, "Continue at %s\n", path)
	})
}
