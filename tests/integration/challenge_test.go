//go:build integration
// +build integration

package integration

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"
)

func TestOptions(t *testing.T) {
	resp := doJSON(t, http.MethodGet, baseURL()+"/v1/challenges/options", "", nil)
	var out struct {
		Types        []struct{ Value string } `json:"types"`
		Difficulties []struct{ Value string } `json:"difficulties"`
	}
	decode(t, resp, &out)

	if len(out.Types) != 5 || len(out.Difficulties) != 3 {
		t.Fatalf("unexpected option sets: %+v", out)
	}
}

func TestCreateAndListChallenge(t *testing.T) {
	user := seedUser(t)
	title := fmt.Sprintf("Two Sum %s", user.Username)

	resp := doJSON(t, http.MethodPost, baseURL()+"/v1/challenges", user.AccessToken, map[string]interface{}{
		"title":      title,
		"type":       "Algorithm",
		"difficulty": "Easy",
		"briefDesc":  "Find two numbers that add up to a target",
		"imagesURL":  []string{"https://res.cloudinary.com/demo/image/upload/sample.jpg"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, baseURL()+"/v1/users/"+user.Username+"/challenges", "", nil)
	var out struct {
		Challenges []struct {
			Title string `json:"title"`
		} `json:"challenges"`
	}
	decode(t, resp, &out)
	if len(out.Challenges) != 1 || out.Challenges[0].Title != title {
		t.Fatalf("created challenge not listed: %+v", out)
	}
}

func TestCreateRejectsUnknownType(t *testing.T) {
	user := seedUser(t)
	resp := doJSON(t, http.MethodPost, baseURL()+"/v1/challenges", user.AccessToken, map[string]interface{}{
		"title":      "Bad type",
		"type":       "Puzzle",
		"difficulty": "Easy",
		"imagesURL":  []string{"https://res.cloudinary.com/demo/image/upload/sample.jpg"},
	})
	var out map[string]interface{}
	decode(t, resp, &out)

	if resp.StatusCode != http.StatusBadRequest || out["field"] != "type" {
		t.Fatalf("expected validation error on type, got %d %v", resp.StatusCode, out)
	}
}

func TestSubmitWithoutImages(t *testing.T) {
	user := seedUser(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("title", "No screenshots")
	_ = mw.Close()

	req, err := http.NewRequest(http.MethodPost, baseURL()+"/v1/challenges/submit", &buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+user.AccessToken)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	var out map[string]interface{}
	decode(t, resp, &out)

	if resp.StatusCode != http.StatusBadRequest || out["error"] != "images_required" {
		t.Fatalf("expected images_required, got %d %v", resp.StatusCode, out)
	}
}

func TestNewPageRedirectsAnonymous(t *testing.T) {
	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Get(baseURL() + "/v1/challenges/new")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
}
