package global

import "time"

// AppConfig holds the gateway process configuration. Values come from the
// built-in defaults, then an optional YAML file, then environment variables,
// each layer overriding the previous one.
type AppConfig struct {
	GatewayNodeId string `yaml:"gateway_node_id"` // node id, also the snowflake node seed
	Port          int    `yaml:"port"`            // HTTP + WebSocket port
	GrpcPort      int    `yaml:"grpc_port"`       // gRPC health port

	// AllowedOrigins restricts which browser origins may upgrade to a
	// WebSocket. Empty means any origin is accepted.
	AllowedOrigins []string `yaml:"allowed_origins"`

	World WorldConfig `yaml:"world"`
	Nats  NatsConfig  `yaml:"nats"`
}

// WorldConfig tunes the in-memory world state gateway.
type WorldConfig struct {
	SpawnX float64 `yaml:"spawn_x"`
	SpawnY float64 `yaml:"spawn_y"`
	SpawnZ float64 `yaml:"spawn_z"`

	SendQueueSize int `yaml:"send_queue_size"` // per-connection outbound queue
	FanoutQueue   int `yaml:"fanout_queue"`    // broadcast job queue depth

	UpdateRPS   float64 `yaml:"update_rps"`   // updateState frames per second per connection
	UpdateBurst int     `yaml:"update_burst"` // burst allowance on top of UpdateRPS

	ReadLimit    int64         `yaml:"read_limit"`    // max inbound frame bytes
	PongWait     time.Duration `yaml:"pong_wait"`     // read deadline refreshed on pong
	PingInterval time.Duration `yaml:"ping_interval"` // server ping cadence
	WriteWait    time.Duration `yaml:"write_wait"`    // per-write deadline
}

// NatsConfig controls the optional event mirror. When disabled the gateway
// is fully self-contained, which is the default.
type NatsConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}
