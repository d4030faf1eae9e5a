package ctxkeys

type Key int

const (
	AppName    Key = iota // string: name shown in the app bar and title
	ThemeColor            // string: theme-color meta value
)
