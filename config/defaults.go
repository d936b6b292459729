package config

import "time"

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultWindowName and DefaultClassName identify Pageant's hidden
	// message window.
	DefaultWindowName = "Pageant"
	DefaultClassName  = "Pageant"

	// DefaultConnectCommand starts gpg-agent, which brings up its Pageant
	// emulation window when enable-putty-support is set.
	DefaultConnectCommand = "gpg-connect-agent"

	// DefaultMapPrefix is the shared memory name prefix; the process id
	// and a unique suffix follow it.
	DefaultMapPrefix = "WSLPageantRequest"

	// DefaultProvokeSettle is the pause between running the connect
	// command and the second window lookup.
	DefaultProvokeSettle = 100 * time.Millisecond

	// DefaultSocketName is gpg-agent's socket emulation file under
	// <user cache dir>/gnupg.
	DefaultSocketName = "S.gpg-agent"

	// DefaultAgentHost is where the socket emulation listens.
	DefaultAgentHost = "localhost"

	// DefaultDialTimeout of zero leaves the dial unbounded.
	DefaultDialTimeout time.Duration = 0

	// DefaultConfigName is looked up under <user config dir>/gpgbridge.
	DefaultConfigName = "config.yaml"
)

// DefaultConnectArgs are passed to DefaultConnectCommand.
func DefaultConnectArgs() []string { return []string{"/bye"} }

// Default returns a Config with every default applied and no mode set.
func Default() *Config {
	return &Config{
		WindowName:     DefaultWindowName,
		ClassName:      DefaultClassName,
		ConnectCommand: DefaultConnectCommand,
		ConnectArgs:    DefaultConnectArgs(),
		MapPrefix:      DefaultMapPrefix,
		ProvokeSettle:  DefaultProvokeSettle,
		SocketName:     DefaultSocketName,
		AgentHost:      DefaultAgentHost,
		DialTimeout:    DefaultDialTimeout,
		Verbose:        1,
	}
}
