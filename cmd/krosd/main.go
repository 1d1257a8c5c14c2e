// krosd runs the motor-relay peripheral: an I2C bus target serving
// command/response traffic, with optional MQTT and websocket
// telemetry.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"

	"github.com/golang/glog"

	"github.com/krosbot/kros.go/pkg/config"
	fx "github.com/krosbot/kros.go/pkg/framework"
	"github.com/krosbot/kros.go/pkg/i2ctarget"
	"github.com/krosbot/kros.go/pkg/motor"
	"github.com/krosbot/kros.go/pkg/slave"
	"github.com/krosbot/kros.go/pkg/telemetry"
	"github.com/krosbot/kros.go/pkg/telemetry/ws"
)

var (
	configPath = "config.toml"
	simulated  bool
)

func init() {
	if val := os.Getenv("KROS_CONFIG"); val != "" {
		configPath = val
	}
	flag.StringVar(&configPath, "config", configPath, "Path to TOML configuration.")
	flag.BoolVar(&simulated, "sim", false, "Use the simulated bus target.")
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		glog.Exit(err)
	}

	target, err := openTarget()
	if err != nil {
		glog.Exit(err)
	}

	motors := motor.NewController()
	defer motors.Close()
	s := slave.New(cfg.SlaveConfig(), target, motors)

	runner := fx.NewRunner().HandleSignals()
	var observers slave.Observers

	if cfg.Telemetry.Enabled {
		q, err := telemetry.NewQueue(cfg.Telemetry.MQTTURL)
		if err != nil {
			glog.Exit(err)
		}
		if err := q.Connect(); err != nil {
			// auto-reconnect will keep trying; don't hold up the bus
			glog.Warningf("MQTT connect: %v", err)
		}
		defer q.Close()
		pub := telemetry.NewPublisher(q, telemetry.DeviceID())
		observers = append(observers, pub)
		runner.Go(pub)

		if addr := cfg.Telemetry.WSAddr; addr != "" {
			feed := ws.NewFeed()
			observers = append(observers, feed)
			runner.Go(fx.NamedRun("ws", serveFeed(addr, feed)))
		}
	}
	if len(observers) > 0 {
		s.SetObserver(observers)
	}

	if err := s.Enable(); err != nil {
		glog.Exit(err)
	}

	// hold until a stop is requested
	runner.Go(fx.NamedRun("slave", fx.RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})))

	err = runner.Wait()
	if derr := s.Disable(); derr != nil {
		glog.Errorf("disable: %v", derr)
	}
	if err != nil {
		glog.Exit(err)
	}
}

// openTarget picks the bus-target facility. Only the simulated
// facility is built into this binary; hardware ports provide their
// own i2ctarget.Target.
func openTarget() (i2ctarget.Target, error) {
	if simulated {
		return i2ctarget.NewSim(), nil
	}
	return nil, errors.New("no hardware bus target on this platform, use -sim")
}

func serveFeed(addr string, feed *ws.Feed) fx.RunFunc {
	mux := http.NewServeMux()
	mux.Handle("/frames", feed.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	return func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			srv.Close()
		}()
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return ctx.Err()
	}
}
