package main

// Options are the sitekit command line flags.
type Options struct {
	Lang        []string `short:"l" long:"lang" description:"language code to keep, repeatable (default from config)"`
	Template    string   `short:"t" long:"template" description:"template repository URL"`
	NoEnv       bool     `long:"no-env" description:"skip pulling environment variables with the vercel cli"`
	NoInstall   bool     `long:"no-install" description:"skip installing dependencies"`
	Verbose     bool     `short:"v" long:"verbose" description:"debug logging on stderr"`
	Plain       bool     `long:"plain" description:"plain line output, no interactive screens"`
	Version     bool     `long:"version" description:"print version and exit"`
	WriteConfig bool     `long:"write-config" description:"write the effective configuration (without tokens) and exit"`
}
