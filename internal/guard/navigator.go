package guard

import "context"

// View names a screen of the console. The web console maps them to paths,
// the CLI to command hints.
type View string

const (
	ViewHome      View = "home"
	ViewLogin     View = "login"
	ViewRegister  View = "register"
	ViewDashboard View = "dashboard"
	ViewPositions View = "positions"
)

type Navigator interface {
	Navigate(view View)
}

type NavigatorFunc func(view View)

func (f NavigatorFunc) Navigate(view View) { f(view) }

type navigatorKey struct{}

// WithNavigator attaches the navigator for the current request or command.
func WithNavigator(ctx context.Context, nav Navigator) context.Context {
	return context.WithValue(ctx, navigatorKey{}, nav)
}

func NavigatorFrom(ctx context.Context) (Navigator, bool) {
	nav, ok := ctx.Value(navigatorKey{}).(Navigator)
	return nav, ok && nav != nil
}
