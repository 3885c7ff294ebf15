package redfish

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/redfishworks/redfishmcp/internal/logging"
)

// memberRef is one entry of a Redfish collection's Members array
type memberRef struct {
	ODataID string `json:"@odata.id"`
}

// memberCollection is the common shape of Redfish collection resources
type memberCollection struct {
	Members []memberRef `json:"Members"`
}

// SystemStatus is the Status object of a ComputerSystem resource
type SystemStatus struct {
	Health string `json:"Health,omitempty"`
	State  string `json:"State,omitempty"`
}

// SystemSummary is the condensed view of one ComputerSystem member,
// the field set the tool layer reports to callers.
type SystemSummary struct {
	ID           string       `json:"Id,omitempty"`
	Name         string       `json:"Name,omitempty"`
	Manufacturer string       `json:"Manufacturer,omitempty"`
	Model        string       `json:"Model,omitempty"`
	SerialNumber string       `json:"SerialNumber,omitempty"`
	UUID         string       `json:"UUID,omitempty"`
	PowerState   string       `json:"PowerState,omitempty"`
	Status       SystemStatus `json:"Status,omitempty"`
}

// SystemsService provides access to /redfish/v1/Systems and its members
type SystemsService struct {
	client *Client
}

func newSystemsService(client *Client) *SystemsService {
	return &SystemsService{client: client}
}

// Members lists the @odata.id paths of all system members
func (s *SystemsService) Members(ctx context.Context) ([]string, error) {
	path := s.client.ServicePath("Systems", defaultSystemsPath)

	env, err := s.client.Get(ctx, path)
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, NewStatusError("failed to list systems", env.StatusCode, string(env.Body))
	}

	var coll memberCollection
	if err := env.JSON(&coll); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(coll.Members))
	for _, m := range coll.Members {
		if m.ODataID != "" {
			paths = append(paths, m.ODataID)
		}
	}

	logging.Info("listed systems", zap.Int("count", len(paths)))
	return paths, nil
}

// MemberSummary fetches one system member and condenses it
func (s *SystemsService) MemberSummary(ctx context.Context, memberPath string) (*SystemSummary, error) {
	env, err := s.client.Get(ctx, memberPath)
	if err != nil {
		return nil, err
	}
	if env.StatusCode != http.StatusOK {
		return nil, NewStatusError("failed to fetch system member", env.StatusCode, string(env.Body))
	}

	var summary SystemSummary
	if err := env.JSON(&summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Summaries lists all system members and fetches each one's summary.
// Members that fail to fetch are skipped with a warning; a caller asking
// for an inventory overview prefers a partial list over nothing.
func (s *SystemsService) Summaries(ctx context.Context) ([]SystemSummary, error) {
	paths, err := s.Members(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]SystemSummary, 0, len(paths))
	for _, path := range paths {
		summary, err := s.MemberSummary(ctx, path)
		if err != nil {
			logging.Warn("skipping system member",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}
