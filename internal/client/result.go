package client

import (
	"context"
	"log/slog"
	"net/http"
)

// resultResponse is the result endpoint response
type resultResponse struct {
	DownloadURLs map[string]string `json:"download_urls"`
}

// FetchResultURLs fetches the artifact mapping of a completed job: logical
// file type to download URL. Keys with null or absent URLs remain in the map
// as empty strings and are skipped by downstream logic; a sparse mapping is
// never an error.
func (c *Client) FetchResultURLs(ctx context.Context, jobID string) (map[string]string, error) {
	var resp resultResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/jobs/"+jobID+"/result", "", nil, &resp); err != nil {
		return nil, err
	}

	if resp.DownloadURLs == nil {
		resp.DownloadURLs = map[string]string{}
	}

	c.logger.Info("Result URLs fetched",
		slog.String("job_id", jobID),
		slog.Int("artifacts", len(resp.DownloadURLs)),
	)

	return resp.DownloadURLs, nil
}
