package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
)

const defaultServerURL = "http://localhost:8321"

func main() {
	var serverURL string
	flag.StringVar(&serverURL, "server", defaultServerURL, "Server URL")
	flag.StringVar(&serverURL, "s", defaultServerURL, "Server URL (short)")
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(1)
	}

	client := &client{baseURL: strings.TrimSuffix(serverURL, "/")}
	args := flag.Args()

	var err error
	switch args[0] {
	case "status":
		err = client.getJSON("/status")
	case "printers":
		err = client.getJSON("/printers")
	case "scan":
		err = client.postJSON("/printers/scan", nil)
	case "connect":
		if len(args) < 2 {
			fail("usage: posprint-cli connect <device-id>")
		}
		err = client.postJSON("/printers/connect", map[string]string{"id": args[1]})
	case "disconnect":
		err = client.postJSON("/printers/disconnect", nil)
	case "test":
		err = client.postJSON("/print/test", nil)
	case "print":
		if len(args) < 2 {
			fail("usage: posprint-cli print <order.json>")
		}
		err = client.printOrder(args[1])
	case "settings":
		if len(args) > 1 && args[1] == "set" {
			err = client.updateSettings(args[2:])
		} else {
			err = client.getJSON("/settings")
		}
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `posprint CLI

Usage:
  posprint-cli [flags] <command>

Flags:
  -s, -server <url>    Server URL (default: %s)

Commands:
  status
    Show connection state and the connected printer

  printers
    List discovered printers

  scan
    Scan for printers and list the results

  connect <device-id>
    Connect to a printer by its id

  disconnect
    Disconnect the active printer

  test
    Print a test receipt

  print <order.json>
    Print a receipt for the order in the given JSON file

  settings
    Show the persisted settings

  settings set <key=value>...
    Change settings, e.g. settings set copies=2 paperWidth=80

Examples:
  posprint-cli scan
  posprint-cli connect 6c2f9a3e
  posprint-cli print ./order.json
  posprint-cli settings set copies=3 printFooter=false
  posprint-cli -s http://localhost:9000 status

`, defaultServerURL)
}

func fail(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

type client struct {
	baseURL string
}

func (c *client) getJSON(path string) error {
	resp, err := http.Get(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	return printResponse(resp)
}

func (c *client) postJSON(path string, body interface{}) error {
	return c.sendJSON("POST", path, body)
}

func (c *client) sendJSON(method, path string, body interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	return printResponse(resp)
}

// printOrder sends the order JSON file to the print endpoint. The file holds
// either a bare order object or {"order": ..., "restaurantInfo": ...}.
func (c *client) printOrder(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read order file: %w", err)
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("invalid order JSON: %w", err)
	}
	if _, ok := payload["order"]; !ok {
		payload = map[string]json.RawMessage{"order": data}
	}

	return c.postJSON("/print", payload)
}

// updateSettings turns key=value pairs into a partial settings document.
func (c *client) updateSettings(pairs []string) error {
	if len(pairs) == 0 {
		return fmt.Errorf("usage: posprint-cli settings set <key=value>...")
	}

	update := make(map[string]interface{})
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("settings must be in key=value form, got %q", pair)
		}
		if n, err := strconv.Atoi(value); err == nil {
			update[key] = n
		} else if b, err := strconv.ParseBool(value); err == nil {
			update[key] = b
		} else {
			update[key] = value
		}
	}

	return c.sendJSON("PUT", "/settings", update)
}

// printResponse pretty-prints the server's JSON reply and reports non-2xx
// statuses as errors.
func printResponse(resp *http.Response) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		pretty.Write(body)
	}
	fmt.Println(pretty.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server returned HTTP %d", resp.StatusCode)
	}
	return nil
}
