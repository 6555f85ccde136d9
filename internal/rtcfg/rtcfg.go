// rtcfg.go - ambient process configuration via flags + environment
//
// Matches the teacher's main.go: plain flag.FlagSet, no config-file parsing
// (spec.md's Non-goals explicitly exclude configuration file parsing and
// command-line entry frameworks - only the flag surface itself is in scope here).

package rtcfg

import (
	"flag"
	"os"
)

// DriverConfig is cmd/cxdriver's process configuration.
type DriverConfig struct {
	RenderAddr    string
	RetryLink     bool
	SchedPriority int
	BoardResource string // PCIe BAR resource file path, empty for headless/null board
}

// ParseDriverConfig parses cmd/cxdriver's flags, with environment overrides for
// the two values operators most often need to change per-rig without editing a
// launch script.
func ParseDriverConfig(args []string) DriverConfig {
	fs := flag.NewFlagSet("cxdriver", flag.ExitOnError)
	addr := fs.String("render-addr", envOr("CXDRIVER_RENDER_ADDR", "127.0.0.1:7200"), "renderer TCP address")
	retry := fs.Bool("retry", true, "retry connecting to the renderer until it accepts")
	prio := fs.Int("priority", 0, "OS scheduling priority hint")
	boardRes := fs.String("board", envOr("CXDRIVER_BOARD_RESOURCE", ""), "PCIe BAR resource file (empty = null board)")
	_ = fs.Parse(args)
	return DriverConfig{
		RenderAddr:    *addr,
		RetryLink:     *retry,
		SchedPriority: *prio,
		BoardResource: *boardRes,
	}
}

// RendererConfig is cmd/rmvideo's process configuration.
type RendererConfig struct {
	ListenAddr string
	Connect    bool // spec.md §6: CLI argument `connect` opens the TCP link
	MediaRoot  string
	TestSeq    string // path to a test-sequence file, used when Connect is false
}

// ParseRendererConfig parses cmd/rmvideo's flags.
func ParseRendererConfig(args []string) RendererConfig {
	fs := flag.NewFlagSet("rmvideo", flag.ExitOnError)
	listen := fs.String("listen", envOr("RMVIDEO_LISTEN_ADDR", ":7200"), "TCP listen address")
	connect := fs.Bool("connect", false, "wait for the driver's TCP connection")
	media := fs.String("media", defaultMediaRoot(), "media store root directory")
	testSeq := fs.String("test-sequence", "", "path to a test-sequence file (used when -connect is absent)")
	_ = fs.Parse(args)
	return RendererConfig{
		ListenAddr: *listen,
		Connect:    *connect,
		MediaRoot:  *media,
		TestSeq:    *testSeq,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultMediaRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "media"
	}
	return home + "/media"
}
