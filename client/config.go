package client

import (
	"os"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/joho/godotenv"
)

// Config 客户端配置；LoadConfig 先读 .env，再读环境变量
type Config struct {
	Server string // 服务器地址，如 127.0.0.1 或 ws://host:4545/ws
	Port   int
	Path   string

	SendInterval            time.Duration
	ReliableUpdates         bool
	ClearRosterOnDisconnect bool
	DialTimeout             time.Duration
	Spawn                   mgl32.Vec3

	LogFile   string
	Debug     bool
	DebugAddr string // 为空则不启动调试 HTTP
}

func DefaultConfig() Config {
	return Config{
		Server:          "127.0.0.1",
		Port:            4545,
		Path:            "/ws",
		SendInterval:    DefaultSendInterval,
		ReliableUpdates: true,
		DialTimeout:     5 * time.Second,
		Spawn:           DefaultSpawn,
	}
}

// LoadConfig files 为空时读取当前目录的 .env；文件不存在不算错误
func LoadConfig(files ...string) Config {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		Log.Warnf("load env file: %v", err)
	}

	def := DefaultConfig()
	return Config{
		Server:                  getEnv("BEAN_SERVER", def.Server),
		Port:                    parseInt(getEnv("BEAN_PORT", ""), def.Port),
		Path:                    getEnv("BEAN_PATH", def.Path),
		SendInterval:            parseDuration(getEnv("BEAN_SEND_INTERVAL", ""), def.SendInterval),
		ReliableUpdates:         parseBool(getEnv("BEAN_RELIABLE_UPDATES", ""), def.ReliableUpdates),
		ClearRosterOnDisconnect: parseBool(getEnv("BEAN_CLEAR_ROSTER_ON_DISCONNECT", ""), def.ClearRosterOnDisconnect),
		DialTimeout:             parseDuration(getEnv("BEAN_DIAL_TIMEOUT", ""), def.DialTimeout),
		Spawn:                   def.Spawn,
		LogFile:                 getEnv("BEAN_LOG_FILE", def.LogFile),
		Debug:                   parseBool(getEnv("BEAN_DEBUG", ""), def.Debug),
		DebugAddr:               getEnv("BEAN_DEBUG_ADDR", def.DebugAddr),
	}
}

// WSOptions 从配置派生 websocket 传输参数
func (c Config) WSOptions() WSOptions {
	return WSOptions{Port: c.Port, Path: c.Path, DialTimeout: c.DialTimeout}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}
