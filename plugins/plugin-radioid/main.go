// Package pluginradioid answers DMR/NXDN ID lookups (".duid 3122790", ".ducall KC1AWV", ...) from radioid.net.
// Endpoint and timeout come from data/config/plugin-radioid/config.yaml.
package pluginradioid

import (
	"sync"
	"time"

	"github.com/Hafuunano/Core-SkillAction/types"
	"github.com/Hafuunano/Protocol-ConvertTool/protocol"

	"github.com/kc1awv/Plugin-Collections/lib/database/config"
	"github.com/kc1awv/Plugin-Collections/lib/logging"
	"github.com/kc1awv/Plugin-Collections/lib/radioid"
)

const pluginName = "plugin-radioid"

// Meta and registration (required: use WithMeta(Meta) then chain).
var Meta = types.NewPluginEngine("plugin-radioid-001", pluginName, "skill", true)
var p = protocol.Engine.WithMeta(Meta)

var logger = logging.Plugin(pluginName)

// Config is the plugin-radioid config file structure.
type Config struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

var (
	clientOnce sync.Once
	client     *radioid.Client
)

func init() {
	p.OnMessage().Func(Plugin)
}

// Init is optional. Host may call it once at startup to load the config eagerly.
func Init() {
	getClient()
}

func getClient() *radioid.Client {
	clientOnce.Do(func() {
		cfg := Config{Endpoint: radioid.DefaultEndpoint, Timeout: radioid.DefaultTimeout}
		if err := config.LoadOrInit(config.DataDir(), pluginName, &cfg); err != nil {
			logger.WithError(err).Warn("config unreadable, using defaults")
		}
		client = radioid.New(radioid.WithEndpoint(cfg.Endpoint), radioid.WithTimeout(cfg.Timeout))
	})
	return client
}

// Plugin is the required entry. Host calls it for each message with a protocol.Context.
func Plugin(ctx protocol.Context) {
	handleLookup(ctx)
}
