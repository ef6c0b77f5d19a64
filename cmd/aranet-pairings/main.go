// aranet-pairings reports which gateway (base station) each sensor is
// paired to, including pairings that have since been removed.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/aranet-tools/aranet-cloud-go/pkg/aranet"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type pairing struct {
	sensorName string
	sensorID   string
	pairedAt   string
	gwID       string
	gwName     string
	gwSerial   string
	removedAt  string
}

func main() {
	var (
		configFile string
		cacheFile  string
	)
	pflag.StringVarP(&configFile, "config", "c", "aranet_cloud.yaml", "Path to the Aranet cloud credentials file")
	pflag.StringVar(&cacheFile, "cache", "", "Path to the login cache file (empty disables caching)")
	pflag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := aranet.LoadConfig(configFile)
	if err != nil {
		logger.Fatal("cannot load configuration", zap.Error(err))
	}
	client, err := aranet.NewClient(cfg,
		aranet.WithLogger(logger),
		aranet.WithCacheFile(cacheFile),
	)
	if err != nil {
		logger.Fatal("cannot create client", zap.Error(err))
	}

	resp, err := client.GetSensorsInfo(ctx, []string{"name", "devices"})
	if err != nil {
		logger.Fatal("cannot fetch sensor list", zap.Error(err))
	}
	items, err := aranet.ProjectItems(resp)
	if err != nil {
		logger.Fatal("cannot project sensor list", zap.Error(err))
	}

	gws, err := client.GetGateways(ctx)
	if err != nil {
		logger.Fatal("cannot fetch gateways", zap.Error(err))
	}
	gwByID := make(map[string]aranet.Gateway, len(gws.Devices))
	for _, gw := range gws.Devices {
		gwByID[string(gw.ID)] = gw
	}

	var current, removed []pairing
	for _, item := range items {
		for _, d := range item.Devices {
			p := pairing{
				sensorName: item.Name,
				sensorID:   item.ID,
				pairedAt:   d.PairedAt,
				gwID:       string(d.ID),
				removedAt:  d.RemovedAt,
			}
			if gw, ok := gwByID[string(d.ID)]; ok {
				p.gwName = gw.Device
				p.gwSerial = gw.Serial
			}
			if d.Removed() {
				removed = append(removed, p)
			} else {
				current = append(current, p)
			}
		}
	}
	sort.Slice(current, func(i, j int) bool { return current[i].sensorName < current[j].sensorName })
	sort.Slice(removed, func(i, j int) bool { return removed[i].sensorName < removed[j].sensorName })

	fmt.Printf("Found %d paired sensors\n", len(current))
	if len(current) > 0 {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Sensor", "ID", "Paired", "Gateway", "Serial"})
		for _, p := range current {
			table.Append([]string{p.sensorName, p.sensorID, p.pairedAt, p.gwName, p.gwSerial})
		}
		table.Render()
	}

	fmt.Printf("Found %d removed pairings\n", len(removed))
	if len(removed) > 0 {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Sensor", "ID", "Paired", "Removed", "Gateway", "Serial"})
		for _, p := range removed {
			table.Append([]string{p.sensorName, p.sensorID, p.pairedAt, p.removedAt, p.gwName, p.gwSerial})
		}
		table.Render()
	}
}
