package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListInput_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
		enc  string
	}{
		{name: "array", body: `{"tags":["go"," postgres ","- docker"]}`, want: []string{"go", "postgres", "docker"}, enc: `["go","postgres","docker"]`},
		{name: "stringified array", body: `{"tags":"[\"a\",\"b\"]"}`, want: []string{"a", "b"}, enc: `["a","b"]`},
		{name: "free text", body: `{"tags":"• first\n\n- second\n"}`, want: []string{"first", "second"}, enc: `["first","second"]`},
		{name: "null", body: `{"tags":null}`, want: []string{}, enc: "[]"},
		{name: "missing", body: `{}`, want: nil, enc: "[]"},
		{name: "mixed array", body: `{"tags":["a",1,null,true]}`, want: []string{"a", "1", "true"}, enc: `["a","1","true"]`},
		{name: "empty string", body: `{"tags":""}`, want: []string{}, enc: "[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req struct {
				Tags ListInput `json:"tags"`
			}
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			if tt.want == nil {
				assert.Empty(t, req.Tags)
			} else {
				assert.Equal(t, tt.want, []string(req.Tags))
			}
			assert.Equal(t, tt.enc, req.Tags.Encoded())
		})
	}
}

func TestDate_JSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2023-04-05"`), &d))
	assert.Equal(t, time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC), d.Time)

	require.NoError(t, json.Unmarshal([]byte(`"2023-04-05T13:45:00Z"`), &d))
	assert.Equal(t, time.Date(2023, 4, 5, 0, 0, 0, 0, time.UTC), d.Time)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2023-04-05"`, string(out))

	out, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Error(t, json.Unmarshal([]byte(`"05/04/2023"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`20230405`), &d))

	var ptr *Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &ptr))
	assert.Nil(t, ptr)
	assert.Nil(t, ptr.TimePtr())
	assert.Nil(t, DatePtr(nil))
}

func TestExperienceRequest_Validation(t *testing.T) {
	start := &Date{Time: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	tests := []struct {
		name    string
		request ExperienceRequest
		wantErr string
	}{
		{name: "valid", request: ExperienceRequest{Role: "Engineer", Company: "Acme", StartDate: start}},
		{name: "missing role", request: ExperienceRequest{Company: "Acme", StartDate: start}, wantErr: "Role"},
		{name: "missing company", request: ExperienceRequest{Role: "Engineer", StartDate: start}, wantErr: "Company"},
		{name: "missing start date", request: ExperienceRequest{Role: "Engineer", Company: "Acme"}, wantErr: "StartDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.wantErr, verrs[0].Field())
			assert.Equal(t, "required", verrs[0].Tag())
		})
	}
}

func TestExperienceRequest_HighlightItems(t *testing.T) {
	text := "Led project A\nImproved performance"
	req := ExperienceRequest{HighlightsText: &text}
	assert.Equal(t, ListInput{"Led project A", "Improved performance"}, req.HighlightItems())

	req.Highlights = ListInput{"from list"}
	assert.Equal(t, ListInput{"from list"}, req.HighlightItems())

	assert.Empty(t, (&ExperienceRequest{}).HighlightItems())
}

func TestProjectRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request ProjectRequest
		wantTag string
	}{
		{name: "valid", request: ProjectRequest{Title: "Site", Slug: "my-site", RepoURL: "https://github.com/x/y"}},
		{name: "missing title", request: ProjectRequest{}, wantTag: "required"},
		{name: "bad slug", request: ProjectRequest{Title: "Site", Slug: "My Site!"}, wantTag: "slug"},
		{name: "bad repo url", request: ProjectRequest{Title: "Site", RepoURL: "not a url"}, wantTag: "url"},
		{name: "bad type", request: ProjectRequest{Title: "Site", ProjectType: "stolen"}, wantTag: "oneof"},
		{name: "negative order", request: ProjectRequest{Title: "Site", Order: intPtr(-1)}, wantTag: "min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantTag == "" {
				assert.NoError(t, err)
				return
			}
			var verrs validator.ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Equal(t, tt.wantTag, verrs[0].Tag())
		})
	}
}

func TestOrderRequests_Validation(t *testing.T) {
	valid := ProjectOrderRequest{ProjectOrders: []OrderItem{{ID: "3f1c3c1e-8a4e-4b7e-9c0e-0a3f4e6b2d11", Order: 1}}}
	assert.NoError(t, valid.Validate())

	assert.Error(t, (&ProjectOrderRequest{}).Validate(), "empty list rejected")
	bad := TrainingOrderRequest{TrainingOrders: []OrderItem{{ID: "not-a-uuid", Order: 1}}}
	assert.Error(t, bad.Validate())
}

func TestVisitAndLogin_Validation(t *testing.T) {
	assert.NoError(t, (&VisitRequest{}).Validate())
	assert.NoError(t, (&VisitRequest{IPAddress: "2001:db8::1"}).Validate())
	assert.Error(t, (&VisitRequest{IPAddress: "999.1.1.1"}).Validate())

	assert.NoError(t, (&LoginRequest{Username: "admin", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Username: "admin"}).Validate())
}

func intPtr(i int) *int { return &i }
