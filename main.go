package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"beannet/client"
)

// beannet 入口：无界面机器人客户端，按固定帧率驱动 client.Tick
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type botOptions struct {
	fps    int
	radius float32
	speed  float32
	color  []uint
}

func newRootCmd() *cobra.Command {
	cfg := client.LoadConfig()
	opts := botOptions{fps: 60, radius: 3, speed: 0.5, color: []uint{0, 121, 241, 255}}

	cmd := &cobra.Command{
		Use:          "beannet",
		Short:        "Headless bean client that walks a circle and mirrors remote players",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.color) != 4 {
				return fmt.Errorf("--color wants 4 components, got %d", len(opts.color))
			}
			return run(cfg, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&cfg.Server, "server", cfg.Server, "server address, e.g. 127.0.0.1 or ws://host:4545/ws")
	f.IntVar(&cfg.Port, "port", cfg.Port, "server port used when the address has none")
	f.StringVar(&cfg.Path, "path", cfg.Path, "websocket path")
	f.DurationVar(&cfg.SendInterval, "send-interval", cfg.SendInterval, "minimum time between position updates")
	f.BoolVar(&cfg.ReliableUpdates, "reliable", cfg.ReliableUpdates, "fail instead of drop when the send queue is full")
	f.BoolVar(&cfg.ClearRosterOnDisconnect, "clear-on-disconnect", cfg.ClearRosterOnDisconnect, "forget remote players after a disconnect")
	f.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file (stderr when empty)")
	f.BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug level logging")
	f.StringVar(&cfg.DebugAddr, "debug-addr", cfg.DebugAddr, "debug HTTP listen address, e.g. :8081")
	f.IntVar(&opts.fps, "fps", opts.fps, "simulated frame rate")
	f.Float32Var(&opts.radius, "radius", opts.radius, "radius of the walked circle")
	f.Float32Var(&opts.speed, "speed", opts.speed, "angular speed in radians per second")
	f.UintSliceVar(&opts.color, "color", opts.color, "local player color as r,g,b,a")
	return cmd
}

func run(cfg client.Config, opts botOptions) error {
	if err := client.InitLogger(cfg.LogFile, cfg.Debug); err != nil {
		return err
	}
	defer client.SyncLogger()

	c := client.New(cfg, nil)
	clock := client.NewSystemClock()

	center := cfg.Spawn
	c.OnAccept = func(id client.PlayerID, spawn mgl32.Vec3) {
		center = spawn
		client.Log.Infof("spawned as %d at %v", id, spawn)
	}

	board := client.NewStatusBoard(c.Metrics())
	if cfg.DebugAddr != "" {
		srv := &http.Server{Addr: cfg.DebugAddr, Handler: client.NewAdminRouter(board)}
		go func() {
			client.Log.Infof("debug HTTP listening on %s", cfg.DebugAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				client.Log.Errorf("debug listen: %v", err)
			}
		}()
		defer srv.Close()
	}

	if err := c.Connect(cfg.Server); err != nil {
		return err
	}
	defer c.Disconnect()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	frame := time.NewTicker(time.Second / time.Duration(max(opts.fps, 1)))
	defer frame.Stop()
	report := time.NewTicker(5 * time.Second)
	defer report.Stop()

	color := client.Color{R: uint8(opts.color[0]), G: uint8(opts.color[1]), B: uint8(opts.color[2]), A: uint8(opts.color[3])}
	for {
		select {
		case <-quit:
			client.Log.Info("Shutting down...")
			return nil
		case <-report.C:
			for _, p := range c.Remotes() {
				client.Log.Infof("player %d at %v color %v", p.ID, p.Position, p.Color)
			}
		case <-frame.C:
			now := clock.Now()
			board.Apply(c)
			c.Tick(now, client.LocalState{Position: circlePoint(center, opts.radius, opts.speed, now), Color: color})
			board.Publish(c.Status())
		}
	}
}

// circlePoint 以 center 为圆心在水平面上绕圈
func circlePoint(center mgl32.Vec3, radius, speed float32, now float64) mgl32.Vec3 {
	angle := speed * float32(now)
	offset := mgl32.Vec3{math32.Cos(angle), 0, math32.Sin(angle)}.Mul(radius)
	return center.Add(offset)
}
