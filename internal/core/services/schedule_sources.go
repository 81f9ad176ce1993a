package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"maintex-gateway/internal/core/domain"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// XLSXContentType is the MIME type of an exported workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxExportBytes bounds how much of an upstream body is read.
const maxExportBytes = 64 << 20

// DelegatedDriveSource exports with the caller's own OAuth token, so Drive
// enforces the caller's document permissions.
type DelegatedDriveSource struct {
	httpClient *http.Client
	opts       []option.ClientOption
}

// NewDelegatedDriveSource creates a delegated-user export source
func NewDelegatedDriveSource(httpClient *http.Client, opts ...option.ClientOption) *DelegatedDriveSource {
	return &DelegatedDriveSource{httpClient: httpClient, opts: opts}
}

func (s *DelegatedDriveSource) Name() domain.ExportSource { return domain.SourceDelegatedUser }

func (s *DelegatedDriveSource) Export(ctx context.Context, documentID string, caller domain.Caller) ([]byte, error) {
	if caller.Tokens == nil || caller.Tokens.AccessToken == "" {
		return nil, domain.ErrTokenMissing
	}

	opts := append([]option.ClientOption{option.WithHTTPClient(bearerClient(s.httpClient, caller.Tokens))}, s.opts...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: drive client: %v", domain.ErrUpstreamFetch, err)
	}
	return exportDrive(ctx, svc, documentID)
}

// ServiceAccountSource exports with the server's own service credential.
type ServiceAccountSource struct {
	svc *drive.Service
}

// NewServiceAccountSource parses the service account key and prepares a
// read-only Drive client.
func NewServiceAccountSource(ctx context.Context, credentialsJSON []byte, httpClient *http.Client, opts ...option.ClientOption) (*ServiceAccountSource, error) {
	if len(credentialsJSON) == 0 {
		return nil, domain.ErrServiceAccountMissing
	}
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, drive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: service account: %v", domain.ErrConfiguration, err)
	}

	all := append([]option.ClientOption{option.WithHTTPClient(tokenClient(httpClient, creds.TokenSource))}, opts...)
	svc, err := drive.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("%w: drive client: %v", domain.ErrConfiguration, err)
	}
	return &ServiceAccountSource{svc: svc}, nil
}

func (s *ServiceAccountSource) Name() domain.ExportSource { return domain.SourceServiceCredential }

func (s *ServiceAccountSource) Export(ctx context.Context, documentID string, _ domain.Caller) ([]byte, error) {
	return exportDrive(ctx, s.svc, documentID)
}

func exportDrive(ctx context.Context, svc *drive.Service, documentID string) ([]byte, error) {
	resp, err := svc.Files.Export(documentID, XLSXContentType).Context(ctx).Download()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			switch gerr.Code {
			case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
				return nil, fmt.Errorf("%w: drive returned %d: %v", domain.ErrDocumentDenied, gerr.Code, gerr.Message)
			}
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	return readBody(resp.Body)
}

// PublicExportSource downloads a publicly shared sheet without credentials.
type PublicExportSource struct {
	httpClient  *http.Client
	urlOverride string
}

// NewPublicExportSource creates a public export source. A non-empty
// exportURL is fetched verbatim instead of the sheet's export link.
func NewPublicExportSource(httpClient *http.Client, exportURL string) *PublicExportSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &PublicExportSource{httpClient: httpClient, urlOverride: exportURL}
}

func (s *PublicExportSource) Name() domain.ExportSource { return domain.SourcePublicExport }

// ExportURL returns the URL fetched for documentID.
func (s *PublicExportSource) ExportURL(documentID string) string {
	if s.urlOverride != "" {
		return s.urlOverride
	}
	return "https://docs.google.com/spreadsheets/d/" + url.PathEscape(documentID) + "/export?format=xlsx"
}

func (s *PublicExportSource) Export(ctx context.Context, documentID string, _ domain.Caller) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.ExportURL(documentID), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrUpstreamFetch, err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: public export returned HTTP %d", domain.ErrUpstreamFetch, resp.StatusCode)
	}

	return readBody(resp.Body)
}

func readBody(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxExportBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrUpstreamFetch, err)
	}
	if len(data) > maxExportBytes {
		return nil, fmt.Errorf("%w: export exceeds %d bytes", domain.ErrUpstreamFetch, maxExportBytes)
	}
	return data, nil
}
