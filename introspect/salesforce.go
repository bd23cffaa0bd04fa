package introspect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ridoystarlord/relgraph/schema"
)

// DefaultAPIVersion is the REST API version used when none is configured.
const DefaultAPIVersion = "v59.0"

// SalesforceDescriber describes sObjects through the REST describe endpoints.
type SalesforceDescriber struct {
	instanceURL string
	accessToken string
	apiVersion  string
	client      *http.Client
}

type sobjectDescribe struct {
	Name   string         `json:"name"`
	Label  string         `json:"label"`
	Custom bool           `json:"custom"`
	Fields []sobjectField `json:"fields"`
}

type sobjectField struct {
	Name          string   `json:"name"`
	Label         string   `json:"label"`
	Type          string   `json:"type"`
	ReferenceTo   []string `json:"referenceTo"`
	CascadeDelete bool     `json:"cascadeDelete"`
	Length        int      `json:"length"`
	Nillable      bool     `json:"nillable"`
}

type globalDescribe struct {
	SObjects []struct {
		Name   string `json:"name"`
		Label  string `json:"label"`
		Custom bool   `json:"custom"`
	} `json:"sobjects"`
}

// NewSalesforceDescriber creates a describer for the org at instanceURL. A nil
// client uses a client with a 30 second timeout.
func NewSalesforceDescriber(instanceURL, accessToken, apiVersion string, client *http.Client) *SalesforceDescriber {
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SalesforceDescriber{
		instanceURL: strings.TrimRight(instanceURL, "/"),
		accessToken: accessToken,
		apiVersion:  apiVersion,
		client:      client,
	}
}

func (d *SalesforceDescriber) Describe(ctx context.Context, objectName string) (schema.ObjectDescriptor, error) {
	endpoint := fmt.Sprintf("%s/services/data/%s/sobjects/%s/describe", d.instanceURL, d.apiVersion, url.PathEscape(objectName))

	var result sobjectDescribe
	if err := d.get(ctx, endpoint, &result); err != nil {
		return schema.ObjectDescriptor{}, describeErr(objectName, err)
	}

	object := schema.ObjectDescriptor{
		Name:     result.Name,
		Label:    result.Label,
		IsCustom: result.Custom,
		Fields:   make([]schema.FieldDescriptor, 0, len(result.Fields)),
	}
	if object.Name == "" {
		object.Name = objectName
	}
	for _, f := range result.Fields {
		field := schema.FieldDescriptor{
			Name:            f.Name,
			Label:           f.Label,
			Type:            schema.FieldType(f.Type),
			IsCascadeDelete: f.CascadeDelete,
			Length:          f.Length,
			Nillable:        f.Nillable,
		}
		if field.IsReference() {
			field.ReferenceTargets = f.ReferenceTo
		}
		object.Fields = append(object.Fields, field)
	}
	return object, nil
}

func (d *SalesforceDescriber) ListObjects(ctx context.Context) ([]schema.ObjectSummary, error) {
	endpoint := fmt.Sprintf("%s/services/data/%s/sobjects", d.instanceURL, d.apiVersion)

	var result globalDescribe
	if err := d.get(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("global describe: %w", err)
	}

	objects := make([]schema.ObjectSummary, 0, len(result.SObjects))
	for _, o := range result.SObjects {
		objects = append(objects, schema.ObjectSummary{Name: o.Name, Label: o.Label, IsCustom: o.Custom})
	}
	return objects, nil
}

func (d *SalesforceDescriber) get(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrObjectNotFound
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %s", ErrUnauthorized, strings.TrimSpace(string(body)))
		default:
			return fmt.Errorf("API error: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
