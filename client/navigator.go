package client

// LoginPath is the page the client navigates to when the session cannot be
// recovered.
const LoginPath = "/login"

// Navigator moves the user interface to another page. The client calls it
// with LoginPath after clearing an unrecoverable session.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Navigate(path string) { f(path) }

type noopNavigator struct{}

func (noopNavigator) Navigate(string) {}
