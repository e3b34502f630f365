package global

import (
	"hash/fnv"
	"os"
	"strconv"
	"time"

	"PArena/tools/ids"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// GatewayConfig is the default configuration; Load layers a YAML file and
// environment variables on top of it.
var GatewayConfig = AppConfig{
	GatewayNodeId: "arena_gw_01",
	Port:          8080,
	GrpcPort:      50052,
	World: WorldConfig{
		SpawnX:        0,
		SpawnY:        0,
		SpawnZ:        0,
		SendQueueSize: 256,
		FanoutQueue:   1024,
		UpdateRPS:     30,
		UpdateBurst:   60,
		ReadLimit:     64 << 10, // 64KB, state frames are tiny
		PongWait:      60 * time.Second,
		PingInterval:  25 * time.Second,
		WriteWait:     10 * time.Second,
	},
	Nats: NatsConfig{
		Enabled:       false,
		URL:           "nats://127.0.0.1:4222",
		SubjectPrefix: "arena.world",
	},
}

// Load fills GatewayConfig from the optional YAML file at path (skipped when
// empty or missing) and then applies environment overrides.
func Load(path string) (*AppConfig, error) {
	cfg := GatewayConfig

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "read config %s", path)
			}
		} else if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	applyEnv(&cfg)
	GatewayConfig = cfg
	return &GatewayConfig, nil
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("GATEWAY_ID"); v != "" {
		cfg.GatewayNodeId = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("GRPC_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.GrpcPort = p
		}
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.Nats.Enabled = true
		cfg.Nats.URL = v
	}
}

// ConfigIds seeds the snowflake generator from the gateway node id so two
// gateways with distinct ids never mint the same connection id.
func ConfigIds() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(GatewayConfig.GatewayNodeId))
	ids.SetNodeID(int64(h.Sum32() & 0x3FF))
}
