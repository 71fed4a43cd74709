package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"text/template"

	"github.com/northvolt/go-w5500"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type infoConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	json       bool
}

func (c *infoConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintf(c.err, "info\n")
	}

	d, closer, err := newW5500(ctx, c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	di, err := getDeviceInfo(ctx, d)
	if err != nil {
		return err
	}

	if c.json {
		return writeJSON(c.out, di)
	} else {
		return writeText(c.out, di)
	}
}

const deviceInfoTemplate = `
Device Part:
    W5500 (version 0x{{ printf "%02X" .Version }})

Network:
    MAC      {{ .HardwareAddr }}
    IP       {{ .IP }}
    Mask     {{ .Mask }}
    Gateway  {{ .Gateway }}

PHY:
    {{ .PHY }}

Retransmission:
    timeout {{ .RetryTimeout }}, {{ .RetryCount }} retries

Sockets:
{{- range $i, $s := .Sockets }}
    {{ $i }} {{ $s }}
{{- end }}

Done
`

func writeText(w io.Writer, di *deviceInfo) error {
	t, err := template.New("info").Parse(deviceInfoTemplate)
	if err != nil {
		return err
	}
	return t.Execute(w, di)
}

func writeJSON(w io.Writer, data any) error {
	j, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		return err
	}
	_, err = w.Write(j)
	return err
}

func newInfoCmd(
	rootConfig *rootConfig, out io.Writer, err io.Writer,
) *ffcli.Command {
	cfg := infoConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("w5500 info", flag.ExitOnError)
	fs.BoolVar(&cfg.json, "json", false, "output in json mode")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "info",
		ShortUsage: "info",
		ShortHelp:  "Returns network, PHY and socket state of the controller.",
		FlagSet:    fs,
		Options:    envOptions(),
		Exec:       cfg.Exec,
	})
}

type deviceInfo struct {
	Version      byte     `json:"version"`
	HardwareAddr string   `json:"hardware_addr"`
	IP           string   `json:"ip"`
	Mask         string   `json:"mask"`
	Gateway      string   `json:"gateway"`
	PHY          string   `json:"phy"`
	LinkUp       bool     `json:"link_up"`
	RetryTimeout string   `json:"retry_timeout"`
	RetryCount   uint8    `json:"retry_count"`
	Sockets      []string `json:"sockets"`
}

func getDeviceInfo(ctx context.Context, d *w5500.Dev) (*deviceInfo, error) {
	var di = &deviceInfo{}

	var err error
	di.Version, err = d.Version(ctx)
	if err != nil {
		return nil, err
	}

	mac, err := d.HardwareAddr(ctx)
	if err != nil {
		return di, err
	}
	di.HardwareAddr = mac.String()

	ipc, err := d.IPConfig(ctx)
	if err != nil {
		return di, err
	}
	di.IP = ipc.IP.String()
	di.Mask = net4Mask(ipc.Mask)
	di.Gateway = ipc.Gateway.String()

	phy, err := d.PHYStatus(ctx)
	if err != nil {
		return di, err
	}
	di.PHY = phy.String()
	di.LinkUp = phy.Link()

	timeout, count, err := d.RetryConfig(ctx)
	if err != nil {
		return di, err
	}
	di.RetryTimeout = timeout.String()
	di.RetryCount = count

	for i := 0; i < 8; i++ {
		s, err := d.SocketStatus(ctx, i)
		if err != nil {
			return di, err
		}
		di.Sockets = append(di.Sockets, s.String())
	}

	return di, nil
}
