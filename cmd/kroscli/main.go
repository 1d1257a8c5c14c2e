// kroscli is an interactive console driving a peripheral as the bus
// master. It runs an in-process peripheral over the simulated bus
// target, which makes it a workbench for the protocol: every command
// travels through the same frames and windows a real master uses.
package main

import (
	"flag"
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/krosbot/kros.go/pkg/i2ctarget"
	"github.com/krosbot/kros.go/pkg/master"
	"github.com/krosbot/kros.go/pkg/motor"
	"github.com/krosbot/kros.go/pkg/slave"
)

var (
	busID   = 1
	address = 0x43
	debug   bool
)

func init() {
	flag.IntVar(&busID, "bus", busID, "Bus id of the simulated target.")
	flag.IntVar(&address, "addr", address, "7-bit address of the simulated target.")
	flag.BoolVar(&debug, "debug", debug, "Log every command the peripheral receives.")
}

type console struct {
	client *master.Client
	slave  *slave.Slave
}

func main() {
	flag.Parse()

	sim := i2ctarget.NewSim()
	conf := slave.Config{Bus: busID, Addr: uint8(address), Debug: debug}
	con := &console{
		slave:  slave.New(conf, sim, motor.NewController()),
		client: master.New(master.DefaultConfig(), sim),
	}
	if err := con.slave.Enable(); err != nil {
		glog.Exit(err)
	}

	sh := ishell.New()
	sh.Println("kros console; peripheral on simulated bus", busID, "at", fmt.Sprintf("%#02x", address))
	sh.AddCmd(&ishell.Cmd{Name: "ping", Help: "ping the peripheral", Func: con.ping})
	sh.AddCmd(&ishell.Cmd{Name: "enable", Help: "enable the motor controller", Func: con.enable})
	sh.AddCmd(&ishell.Cmd{Name: "disable", Help: "disable the motor controller", Func: con.disable})
	sh.AddCmd(&ishell.Cmd{Name: "go", Help: "go pfwd sfwd paft saft", Func: con.drive})
	sh.AddCmd(&ishell.Cmd{Name: "stop", Help: "stop all motors", Func: con.stop})
	sh.AddCmd(&ishell.Cmd{Name: "request", Help: "read current motor speeds", Func: con.request})
	sh.AddCmd(&ishell.Cmd{Name: "color", Help: "color r g b", Func: con.color})
	sh.AddCmd(&ishell.Cmd{Name: "stats", Help: "show peripheral counters", Func: con.stats})
	sh.Run()

	con.slave.Disable()
}

func (con *console) ping(c *ishell.Context) {
	rsp, err := con.client.Ping()
	if err != nil {
		c.Err(err)
		return
	}
	c.Println("pong:", rsp)
}

func (con *console) enable(c *ishell.Context) {
	if err := con.client.EnableMotors(); err != nil {
		c.Err(err)
		return
	}
	c.Println("motors enabled")
}

func (con *console) disable(c *ishell.Context) {
	if err := con.client.DisableMotors(); err != nil {
		c.Err(err)
		return
	}
	c.Println("motors disabled")
}

func (con *console) drive(c *ishell.Context) {
	f, err := floats(c.Args, 4)
	if err != nil {
		c.Err(err)
		return
	}
	speeds, err := con.client.Go(f[0], f[1], f[2], f[3])
	if err != nil {
		c.Err(err)
		return
	}
	c.Printf("speeds: %v\n", speeds)
}

func (con *console) stop(c *ishell.Context) {
	speeds, err := con.client.Stop()
	if err != nil {
		c.Err(err)
		return
	}
	c.Printf("stopped: %v\n", speeds)
}

func (con *console) request(c *ishell.Context) {
	speeds, err := con.client.Request()
	if err != nil {
		c.Err(err)
		return
	}
	c.Printf("speeds: %v\n", speeds)
}

func (con *console) color(c *ishell.Context) {
	f, err := floats(c.Args, 3)
	if err != nil {
		c.Err(err)
		return
	}
	if err := con.client.SetColor(f[0], f[1], f[2]); err != nil {
		c.Err(err)
		return
	}
	c.Println("color set")
}

func (con *console) stats(c *ishell.Context) {
	s := con.slave.Stats()
	tx, errs := con.client.Counts()
	c.Printf("peripheral: tx=%d probes=%d errors=%d faults=%d\n", s.Tx, s.Probes, s.Errors, s.Faults)
	c.Printf("master:     tx=%d errors=%d\n", tx, errs)
}

func floats(args []string, n int) ([]float32, error) {
	if len(args) != n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(args))
	}
	out := make([]float32, n)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %v", a, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}
