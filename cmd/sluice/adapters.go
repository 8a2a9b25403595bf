package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var adaptersCmd = &cobra.Command{
	Use:   "adapters",
	Short: "Inspect and manage the adapter registry of a running server",
}

var adaptersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered adapters",
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		body, err := request(http.MethodGet, server+"/adapters", "", nil)
		if err != nil {
			return err
		}
		var entries []struct {
			ID     uint64 `json:"id"`
			Name   string `json:"name"`
			Active bool   `json:"active"`
		}
		if err := json.Unmarshal(body, &entries); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		for _, e := range entries {
			status := "active"
			if !e.Active {
				status = "disabled"
			}
			fmt.Printf("%d\t%s\t%s\n", e.ID, e.Name, status)
		}
		return nil
	},
}

var adaptersEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable an adapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setActive(cmd, args[0], true)
	},
}

var adaptersDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable an adapter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setActive(cmd, args[0], false)
	},
}

var adaptersRegisterCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Register a bundled adapter by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		server, _ := cmd.Flags().GetString("server")
		key, _ := cmd.Flags().GetString("api-key")
		payload, _ := json.Marshal(map[string]string{"name": args[0]})
		body, err := request(http.MethodPost, server+"/adapters", key, payload)
		if err != nil {
			return err
		}
		fmt.Println(string(bytes.TrimSpace(body)))
		return nil
	},
}

func setActive(cmd *cobra.Command, id string, active bool) error {
	server, _ := cmd.Flags().GetString("server")
	key, _ := cmd.Flags().GetString("api-key")
	payload, _ := json.Marshal(map[string]bool{"active": active})
	body, err := request(http.MethodPatch, fmt.Sprintf("%s/adapters/%s", server, id), key, payload)
	if err != nil {
		return err
	}
	fmt.Println(string(bytes.TrimSpace(body)))
	return nil
}

func request(method, url, apiKey string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("X-Api-Key", apiKey)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("server returned %s: %s", resp.Status, bytes.TrimSpace(body))
	}
	return body, nil
}

func init() {
	adaptersCmd.PersistentFlags().String("server", "http://localhost:8372", "Base URL of the running server")
	adaptersCmd.PersistentFlags().String("api-key", "", "Admin API key")
	adaptersCmd.AddCommand(adaptersListCmd, adaptersRegisterCmd, adaptersEnableCmd, adaptersDisableCmd)
	rootCmd.AddCommand(adaptersCmd)
}
