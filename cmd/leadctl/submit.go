package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wolfman30/leadrelay/internal/leads"
	"github.com/wolfman30/leadrelay/internal/notify"
)

type submitOptions struct {
	url      string
	name     string
	company  string
	email    string
	phone    string
	message  string
	docTypes []string
	files    []string
	timeout  time.Duration
}

func newSubmitCmd() *cobra.Command {
	opts := submitOptions{}
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Post a test lead to a running relay",
		Long: `Submit sends a multipart lead to <url>/api/lead and prints the
per-channel results, which makes it a quick end-to-end check of the
configured transports.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()
			return runSubmit(ctx, cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.url, "url", "http://localhost:8080", "relay base URL")
	cmd.Flags().StringVar(&opts.name, "name", "leadctl test", "lead name")
	cmd.Flags().StringVar(&opts.company, "company", "", "lead company")
	cmd.Flags().StringVar(&opts.email, "email", "", "lead email")
	cmd.Flags().StringVar(&opts.phone, "phone", "", "lead phone")
	cmd.Flags().StringVar(&opts.message, "message", "Test submission from leadctl", "lead message")
	cmd.Flags().StringSliceVar(&opts.docTypes, "doc-type", nil, "document type (repeatable)")
	cmd.Flags().StringSliceVar(&opts.files, "file", nil, "file to attach (repeatable)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", time.Minute, "request timeout")
	return cmd
}

func runSubmit(ctx context.Context, out io.Writer, opts submitOptions) error {
	body, contentType, err := submitBody(opts)
	if err != nil {
		return err
	}

	endpoint := strings.TrimRight(opts.url, "/") + "/api/lead"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("relay returned %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded struct {
		OK      bool                       `json:"ok"`
		Results map[string]json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	fmt.Fprintf(out, "ok: %t\n", decoded.OK)
	for _, name := range []string{notify.ChannelEmail, notify.ChannelTelegram, notify.ChannelWhatsApp, notify.ChannelAutoreply} {
		if result, ok := decoded.Results[name]; ok {
			fmt.Fprintf(out, "%-10s %s\n", name, result)
		}
	}
	return nil
}

func submitBody(opts submitOptions) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := [][2]string{
		{"name", opts.name},
		{"company", opts.company},
		{"email", opts.email},
		{"phone", opts.phone},
		{"message", opts.message},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	for _, dt := range opts.docTypes {
		if err := mw.WriteField("doc_types", dt); err != nil {
			return nil, "", err
		}
	}
	for _, path := range opts.files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", err
		}
		part, err := mw.CreateFormFile(leads.FilesField, filepath.Base(path))
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
