package cli

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
	"strconv"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	v1 "github.com/shenikar/resqnet/internal/handler/http/v1"
)

const reportsPath = "/api/v1/reports"

// SubmitOptions - поля формы отчета
type SubmitOptions struct {
	Source      string
	Location    string
	Latitude    *float64
	Longitude   *float64
	IsEmergency bool
	SOSType     string
}

// Client - HTTP-клиент API отчетов
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SubmitReport отправляет изображение формой multipart/form-data
func (c *Client) SubmitReport(ctx context.Context, fileName string, image []byte, opts SubmitOptions) (*v1.ReportResponse, error) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)

	part, err := mw.CreateFormFile("file", filepath.Base(fileName))
	if err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	fields := map[string]string{"source": opts.Source}
	if opts.Location != "" {
		fields["location"] = opts.Location
	}
	if opts.Latitude != nil {
		fields["latitude"] = strconv.FormatFloat(*opts.Latitude, 'f', -1, 64)
	}
	if opts.Longitude != nil {
		fields["longitude"] = strconv.FormatFloat(*opts.Longitude, 'f', -1, 64)
	}
	if opts.IsEmergency {
		fields["is_emergency"] = "true"
	}
	if opts.SOSType != "" {
		fields["sos_type"] = opts.SOSType
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+reportsPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		var apiErr v1.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("submit report: status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("submit report: unexpected status %d", resp.StatusCode)
	}

	var report v1.ReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

func NewSubmitCmd() *cobra.Command {
	var (
		serverURL string
		apiKey    string
		timeout   time.Duration
		opts      SubmitOptions
		lat, lon  float64
		output    string
	)

	cmd := &cobra.Command{
		Use:   "submit IMAGE",
		Short: "Upload a field photo as a damage report",
		Long: `Upload an image with its metadata. The server analyzes the photo,
scores it and returns the stored report with suggestions.

Examples:
  # Drone photo with coordinates
  resqctl submit flood.jpg --source drone --lat 50.45 --lon 30.52

  # Citizen SOS with a place name
  resqctl submit fire.png --source citizen --location "Main St 5" --emergency --sos-type life_threat`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(output); err != nil {
				return err
			}
			if cmd.Flags().Changed("lat") {
				opts.Latitude = &lat
			}
			if cmd.Flags().Changed("lon") {
				opts.Longitude = &lon
			}

			image, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}

			errOut := cmd.ErrOrStderr()
			s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(errOut))
			s.Suffix = " Uploading and analyzing report..."
			s.Start()

			client := NewClient(serverURL, apiKey, timeout)
			report, err := client.SubmitReport(cmd.Context(), args[0], image, opts)
			s.Stop()
			if err != nil {
				printError(errOut, "Report was not accepted")
				return err
			}
			printSuccess(errOut, "Report stored")

			return writeReport(cmd.OutOrStdout(), report, output)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", envOr("RESQNET_URL", "http://localhost:8080"), "API base URL")
	cmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("RESQNET_API_KEY"), "API key sent as X-API-Key")
	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "Request timeout")
	cmd.Flags().StringVar(&opts.Source, "source", "", "Image source (drone, citizen, cctv...)")
	cmd.Flags().StringVar(&opts.Location, "location", "", "Location name")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "Longitude")
	cmd.Flags().BoolVar(&opts.IsEmergency, "emergency", false, "Mark the report as SOS")
	cmd.Flags().StringVar(&opts.SOSType, "sos-type", "", "SOS type (life_threat, medical, standard)")
	cmd.Flags().StringVarP(&output, "output", "o", formatHuman, "Output format (human, json, yaml)")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
