package lightpath

var (
	Debug = false // set to true for verbose step logging in the CLI
)
