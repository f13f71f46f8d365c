// command vmadm manages the full lifecycle of FreeBSD jail based containers on a single
// host: importing images from a remote catalog, creating, starting, stopping, updating,
// and destroying containers, and booting every autoboot container at system startup.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	kongcompletion "github.com/jotaen/kong-completion"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sweeklys/vmadm-go/hostexec"
	"github.com/sweeklys/vmadm-go/hostsettings"
	"github.com/sweeklys/vmadm-go/imagestore"
	"github.com/sweeklys/vmadm-go/jdb"
	"github.com/sweeklys/vmadm-go/lifecycle"
	"github.com/sweeklys/vmadm-go/storage"
)

// poolSlug distinguishes this host's cached manifest filenames (`<pool-slug>-<uuid>.json`)
// from another tool's, in case something else ever shares the same image directory.
const poolSlug = "vmadm"

// Context is wired once in main and passed to every verb's Run.
type Context struct {
	Settings *hostsettings.Settings
	Engine   *lifecycle.Engine
	DB       *jdb.JDB
	Importer *imagestore.Importer
}

// CLI is the full command surface. The settings fields double as the schema kong-yaml
// resolves /usr/local/etc/vmadm.yaml against, the way the teacher's CLI layered
// kong.Configuration(kong.JSON, ...) over its own flags.
type CLI struct {
	Pool          string            `default:"zones" help:"zpool containers are created under"`
	ConfDir       string            `default:"/usr/local/etc/vmadm.d" help:"directory holding the jail database"`
	ImageDir      string            `default:"/var/db/vmadm/images" help:"directory holding cached image manifests"`
	BrandDir      string            `default:"/usr/local/share/vmadm/brands" help:"directory holding brand descriptors"`
	RepoURL       string            `default:"" help:"remote image catalog base URL"`
	DevfsRuleset  int               `default:"4" help:"devfs ruleset applied to new jails"`
	Networks      map[string]string `help:"nic_tag to bridge interface map"`
	SkipPingCheck bool              `help:"skip the ICMP address-in-use probe during validation"`

	LogFile  string `default:"/var/log/vmadm.log" placeholder:"<log-file-path>" help:"location of log file (leave empty to log to stderr)"`
	LogLevel string `default:"info" placeholder:"<debug|info|warn|error>" help:"the logging level"`

	List       ListCmd                   `cmd:"" help:"list containers known to this host"`
	Get        GetCmd                    `cmd:"" help:"print one container's full configuration as JSON"`
	Info       InfoCmd                   `cmd:"" help:"print a running container's live status"`
	Create     CreateCmd                 `cmd:"" help:"create a new container from a JSON configuration"`
	Update     UpdateCmd                 `cmd:"" help:"apply a partial update to an existing container"`
	Delete     DeleteCmd                 `cmd:"" help:"stop (if running) and permanently remove a container"`
	Start      StartCmd                  `cmd:"" help:"boot a stopped container"`
	Stop       StopCmd                   `cmd:"" help:"halt a running container"`
	Reboot     RebootCmd                 `cmd:"" help:"stop then start a container"`
	Console    ConsoleCmd                `cmd:"" help:"attach an interactive console to a running container"`
	Images     ImagesCmd                 `cmd:"" help:"browse, import, and prune container images"`
	Config     ConfigCmd                 `cmd:"" help:"validate or audit a container configuration file"`
	Startup    StartupCmd                `cmd:"" help:"boot every autoboot container (run at host startup)"`
	Completion kongcompletion.Completion `cmd:"" help:"generate shell completion scripts"`
	Doc        DocCmd                    `cmd:"" help:"print complete command help formatted as markdown"`
	Version    VersionCmd                `cmd:"" help:"print version information about this command"`
}

func (c *CLI) settings() *hostsettings.Settings {
	return &hostsettings.Settings{
		Pool:          c.Pool,
		ConfDir:       c.ConfDir,
		ImageDir:      c.ImageDir,
		BrandDir:      c.BrandDir,
		RepoURL:       c.RepoURL,
		DevfsRuleset:  c.DevfsRuleset,
		Networks:      c.Networks,
		SkipPingCheck: c.SkipPingCheck,
	}
}

func (c *CLI) initSlog() {
	var level slog.Level
	switch c.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w interface{ Write([]byte) (int, error) } = os.Stderr
	if c.LogFile != "" {
		w = &lumberjack.Logger{
			Filename:   c.LogFile,
			MaxSize:    50,
			MaxBackups: 3,
			MaxAge:     28,
		}
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func main() {
	var cli CLI

	parser := kong.Must(&cli,
		kong.Configuration(kongyaml.Loader, "/usr/local/etc/vmadm.yaml", "~/.vmadm.yaml"),
		kong.Description("Manage FreeBSD jail containers."))
	kongcompletion.Register(parser)

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	cli.initSlog()
	settings := cli.settings()

	ctx := context.Background()
	exec := hostexec.NewReal()
	db, err := jdb.Open(ctx, settings.ConfDir, exec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening jail database: %v\n", err)
		os.Exit(1)
	}

	engine := &lifecycle.Engine{
		DB:       db,
		Storage:  storage.New(exec),
		Exec:     exec,
		Settings: settings,
	}
	catalog := imagestore.NewCatalog(settings.RepoURL)
	importer := &imagestore.Importer{
		Catalog:  catalog,
		Storage:  engine.Storage,
		ImageDir: settings.ImageDir,
		PoolSlug: poolSlug,
		Pool:     settings.Pool,
	}

	err = kctx.Run(&Context{
		Settings: settings,
		Engine:   engine,
		DB:       db,
		Importer: importer,
	})
	kctx.FatalIfErrorf(err)
}
