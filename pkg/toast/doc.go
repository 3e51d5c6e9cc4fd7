// Package toast surfaces storable feedback to the application.
//
// Controllers report persistence failures and invalid forms through a
// Notifier. EventNotifier turns each notification into a "storable:toast"
// event fired on a container, so the application decides how to display it:
//
//	root.On(toast.EventName, func(args ...any) bool {
//	    detail := args[0].(map[string]any)
//	    showBanner(detail["level"], detail["message"])
//	    return true
//	})
//
// LogNotifier writes notifications to a slog.Logger instead, which is what
// the command line tools use.
//
// The helpers Show, Success, Error, Warning and Info fire the event directly
// on any Emitter.
package toast
