package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// extractResponse mirrors the wantmeta /extract response body.
type extractResponse struct {
	Title     string `json:"title"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Domain    string `json:"domain"`
	URL       string `json:"url"`
	Timestamp int64  `json:"timestamp"`
	Error     string `json:"error,omitempty"`
}

// refreshResponse mirrors the wantmeta refresh job creation response.
type refreshResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Total  int    `json:"total"`
}

// refreshStatusResponse mirrors the wantmeta refresh status response.
type refreshStatusResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Items     []struct {
		URL    string           `json:"url"`
		Result *extractResponse `json:"result"`
		Error  *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"items"`
}

func main() {
	apiURL := os.Getenv("WANT_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("WANT_API_KEY")

	s := server.NewMCPServer(
		"wantmeta",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	extractProductTool := mcp.NewTool("extract_product",
		mcp.WithDescription("Extract product metadata (title, image, price, domain) from an e-commerce URL. Best-effort: fields may be empty when the page resists extraction."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The product page URL to extract"),
		),
	)
	s.AddTool(extractProductTool, handleExtractProduct(apiURL, apiKey))

	refreshProductsTool := mcp.NewTool("refresh_products",
		mcp.WithDescription("Re-extract metadata for multiple product URLs in one job and wait for completion. Useful for refreshing a whole wishlist."),
		mcp.WithArray("urls",
			mcp.Required(),
			mcp.Description("List of product page URLs to refresh"),
		),
	)
	s.AddTool(refreshProductsTool, handleRefreshProducts(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func handleExtractProduct(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 120 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		endpoint := apiURL + "/extract?url=" + url.QueryEscape(target)
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create request: %v", err)), nil
		}
		if apiKey != "" {
			httpReq.Header.Set("X-API-Key", apiKey)
		}

		resp, err := client.Do(httpReq)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("API request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to read response: %v", err)), nil
		}

		var er extractResponse
		if err := json.Unmarshal(respBody, &er); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if er.Error != "" {
			return mcp.NewToolResultError(er.Error), nil
		}

		return mcp.NewToolResultText(formatProduct(&er)), nil
	}
}

func handleRefreshProducts(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		urls, err := request.RequireStringSlice("urls")
		if err != nil {
			return mcp.NewToolResultError("urls is required and must be an array of strings"), nil
		}

		payload := map[string]interface{}{"urls": urls}
		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/refresh", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("refresh request failed: %v", err)), nil
		}

		var rr refreshResponse
		if err := json.Unmarshal(respBody, &rr); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse refresh response: %v", err)), nil
		}
		if rr.ID == "" {
			return mcp.NewToolResultError("refresh job creation failed"), nil
		}

		resultBody, err := pollJobCompletion(ctx, client, apiURL, apiKey, "/api/v1/refresh/"+rr.ID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("polling refresh job failed: %v", err)), nil
		}

		var status refreshStatusResponse
		if err := json.Unmarshal(resultBody, &status); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse refresh status: %v", err)), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Refresh %s: %s (%d/%d)\n\n", status.ID, status.Status, status.Completed, status.Total))
		for i, item := range status.Items {
			if item.Error != nil {
				sb.WriteString(fmt.Sprintf("--- [%d] %s: %s ---\n\n", i+1, item.URL, item.Error.Message))
				continue
			}
			if item.Result != nil {
				sb.WriteString(fmt.Sprintf("--- [%d] ---\n%s\n\n", i+1, formatProduct(item.Result)))
			}
		}

		return mcp.NewToolResultText(sb.String()), nil
	}
}

// formatProduct renders an extraction result for the tool output.
func formatProduct(er *extractResponse) string {
	var sb strings.Builder
	sb.WriteString("Title: " + er.Title + "\n")
	sb.WriteString("Domain: " + er.Domain + "\n")
	if er.Price != "" {
		sb.WriteString("Price: " + er.Price + "\n")
	}
	if er.Image != "" {
		sb.WriteString("Image: " + er.Image + "\n")
	}
	sb.WriteString("URL: " + er.URL)
	return sb.String()
}

// apiPost sends a POST request to the wantmeta API and returns the response body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// pollJobCompletion polls a job endpoint until status is no longer "processing" or context is cancelled.
func pollJobCompletion(ctx context.Context, client *http.Client, apiURL, apiKey, endpoint string) ([]byte, error) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+endpoint, nil)
			if err != nil {
				return nil, fmt.Errorf("create poll request: %w", err)
			}
			if apiKey != "" {
				req.Header.Set("X-API-Key", apiKey)
			}

			resp, err := client.Do(req)
			if err != nil {
				return nil, fmt.Errorf("poll request failed: %w", err)
			}
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("read poll response: %w", err)
			}

			var status struct {
				Status string `json:"status"`
			}
			if err := json.Unmarshal(body, &status); err != nil {
				return nil, fmt.Errorf("parse poll response: %w", err)
			}
			if status.Status != "processing" {
				return body, nil
			}
		}
	}
}
