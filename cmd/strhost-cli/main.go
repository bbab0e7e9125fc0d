// Command strhost-cli inspects a running strhost daemon over its HTTP API
// and validates configuration files offline.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jrshann/strhost/apps/airbnbmgmt"
	"github.com/jrshann/strhost/internal/config"
	"github.com/jrshann/strhost/internal/core"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "apps":
		appsCmd(os.Args[2:])
	case "health":
		healthCmd()
	case "validate":
		validateCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func appsCmd(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "list":
		var summaries []core.AppSummary
		getJSON("/apps", &summaries)
		for _, app := range summaries {
			fmt.Printf("%s\t%s\t%s\t%s\n", app.AppID, app.DisplayName, app.Version, app.Status)
		}
	case "describe":
		if len(args) < 2 {
			fatal("describe", fmt.Errorf("missing app id"))
		}
		var desc core.AppDescriptor
		getJSON("/apps/"+args[1], &desc)
		fmt.Printf("id: %s\n", desc.AppID)
		fmt.Printf("name: %s\n", desc.DisplayName)
		fmt.Printf("class: %s\n", desc.Class)
		fmt.Printf("version: %s\n", desc.Version)
		fmt.Printf("status: %s\n", desc.Status)
		if desc.HealthMessage != "" {
			fmt.Printf("health: %s\n", desc.HealthMessage)
		}
		if len(desc.Dashboards) > 0 {
			fmt.Println("dashboards:")
			for _, dash := range desc.Dashboards {
				fmt.Printf("  - %s\n", dash)
			}
		}
	default:
		usage()
		os.Exit(2)
	}
}

func healthCmd() {
	body, status := get("/health")
	fmt.Printf("%d %s\n", status, body)
	if status != http.StatusOK {
		os.Exit(1)
	}
}

// validateCmd loads config files locally without contacting the daemon.
func validateCmd(args []string) {
	path := config.DefaultPath
	if len(args) > 0 {
		path = args[0]
	}

	cfg, err := config.Load(path)
	if err != nil {
		fatal("config", err)
	}
	fmt.Printf("config ok: %s\n", path)

	entries, err := config.LoadApps(cfg.Core.AppsFile)
	if err != nil {
		fatal("apps config", err)
	}

	for _, entry := range entries {
		fmt.Printf("app %s (%s)\n", entry.Name, entry.Config.Class)
		if entry.Config.Class != airbnbmgmt.Class {
			continue
		}
		appCfg, err := airbnbmgmt.ConfigFromApp(entry.Config)
		if err != nil {
			fatal(entry.Name, err)
		}
		for _, unit := range appCfg.Units {
			fmt.Printf("  unit %s\tcode=%s\tcal=%s\tthermostat=%s\n",
				unit.Name, unit.Code, unit.CalCode, unit.ThermostatKey)
		}
	}
	fmt.Printf("apps config ok: %s (%d apps)\n", cfg.Core.AppsFile, len(entries))
}

func get(path string) (string, int) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL() + path)
	if err != nil {
		fatal("request", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fatal("read response", err)
	}
	return string(body), resp.StatusCode
}

func getJSON(path string, dest any) {
	body, status := get(path)
	if status != http.StatusOK {
		fatal("request", fmt.Errorf("%s: status %d", path, status))
	}
	if err := json.Unmarshal([]byte(body), dest); err != nil {
		fatal("decode response", err)
	}
}

func baseURL() string {
	if value := os.Getenv("STRHOST_HTTP_ADDR"); value != "" {
		return "http://" + value
	}
	return "http://localhost:8086"
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  strhost-cli apps list
  strhost-cli apps describe <id>
  strhost-cli health
  strhost-cli validate [config-path]`)
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "strhost-cli: %s: %v\n", what, err)
	os.Exit(1)
}
