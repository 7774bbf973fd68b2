package entity

// NotFoundRoute is where the resolver sends navigation when a record does
// not exist.
const NotFoundRoute = "404"

// DeletedResult is the value a delete dialog closes with.
const DeletedResult = "deleted"

type (
	// Navigator performs programmatic navigation, e.g. Navigate("404").
	Navigator interface {
		Navigate(commands ...string)
	}

	// History returns to the previous view.
	History interface {
		Back()
	}

	// Modal is the host of a dialog.
	Modal interface {
		Dismiss()
		Close(result string)
	}
)

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(commands ...string)

func (f NavigatorFunc) Navigate(commands ...string) { f(commands...) }

// HistoryFunc adapts a function to History.
type HistoryFunc func()

func (f HistoryFunc) Back() { f() }
