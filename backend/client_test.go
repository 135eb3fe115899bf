package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/reelgate/reelgate/access"
	"github.com/reelgate/reelgate/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func item(id string) string {
	return fmt.Sprintf(`{"_id":%q,"videoUrl":"https://cdn/%s","duration":120,"created_by":{"_id":"c1"},"access":{"accessType":"free"}}`, id, id)
}

type recorder struct {
	mu    sync.Mutex
	calls []string
	auth  []string
	body  []string
}

func (r *recorder) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req.Method+" "+req.URL.RequestURI())
	r.auth = append(r.auth, req.Header.Get("Authorization"))
	if req.Body != nil {
		var payload map[string]any
		if json.NewDecoder(req.Body).Decode(&payload) == nil {
			r.body = append(r.body, fmt.Sprint(payload["videoId"]))
		}
	}
}

func (r *recorder) snapshot() (calls, auth, body []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...), append([]string(nil), r.auth...), append([]string(nil), r.body...)
}

func TestClient(t *testing.T) {
	Convey("Given a backend", t, func() {
		rec := &recorder{}
		var failHistory atomic.Bool

		mux := http.NewServeMux()
		mux.HandleFunc("GET /videos/all-videos", func(w http.ResponseWriter, r *http.Request) {
			rec.record(r)
			fmt.Fprintf(w, `{"data":[%s,%s]}`, item("a"), item("b"))
		})
		mux.HandleFunc("POST /videos/{id}/view", func(w http.ResponseWriter, r *http.Request) {
			rec.record(r)
			fmt.Fprint(w, `{"message":"ok"}`)
		})
		mux.HandleFunc("POST /user/history", func(w http.ResponseWriter, r *http.Request) {
			rec.record(r)
			if failHistory.Load() {
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprint(w, `{"message":"boom"}`)
				return
			}
			fmt.Fprint(w, `{"message":"ok"}`)
		})
		mux.HandleFunc("GET /series/{id}", func(w http.ResponseWriter, r *http.Request) {
			rec.record(r)
			fmt.Fprint(w, `{"data":{"_id":"s1","name":"Saga","episodes":[
				{"_id":"e2","videoUrl":"u2","duration":100,"created_by":{"_id":"c1"},"series":"s1","type":"Paid","amount":10,"episode_number":2,"start_time":5,"display_till_time":20},
				{"_id":"e1","videoUrl":"u1","duration":100,"created_by":{"_id":"c1"},"series":"s1","type":"Paid","amount":10,"episode_number":1},
				{"_id":"e3","videoUrl":"u3","duration":300,"created_by":{"_id":"c1"},"series":"s1","type":"Paid","amount":10,"episode_number":3,"start_time":0,"display_till_time":60}
			]}}`)
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		client, err := New(Options{BaseURL: server.URL + "/", Token: "tkn", HTTPClient: server.Client()})
		So(err, ShouldBeNil)

		Convey("FetchPage sends the page query and bearer token", func() {
			items, err := client.FetchPage(context.Background(), 2, 6)
			So(err, ShouldBeNil)
			So(len(items), ShouldEqual, 2)
			So(items[0].ID, ShouldEqual, "a")
			calls, auth, _ := rec.snapshot()
			So(calls, ShouldResemble, []string{"GET /videos/all-videos?limit=6&page=2"})
			So(auth[0], ShouldEqual, "Bearer tkn")
		})

		Convey("Watched records a view and a history entry", func() {
			So(client.Watched(context.Background(), "a"), ShouldBeNil)
			calls, _, body := rec.snapshot()
			So(calls, ShouldContain, "POST /videos/a/view")
			So(calls, ShouldContain, "POST /user/history")
			So(body, ShouldContain, "a")
		})

		Convey("A failing side effect does not stop the other", func() {
			failHistory.Store(true)
			err := client.Watched(context.Background(), "a")
			So(IsNetwork(err), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "boom")
			calls, _, _ := rec.snapshot()
			So(calls, ShouldContain, "POST /videos/a/view")
		})

		Convey("Series episodes become ordered content", func() {
			series, err := client.Series(context.Background(), "s1")
			So(err, ShouldBeNil)
			So(series.Name, ShouldEqual, "Saga")
			So(len(series.Episodes), ShouldEqual, 3)
			So(series.Episodes[0].ID, ShouldEqual, "e1")

			ep := series.Episodes[1]
			So(ep.Series.MustGet().Type, ShouldEqual, "Paid")
			So(ep.Series.MustGet().Price, ShouldEqual, 10)
			So(ep.Access.Type, ShouldBeEmpty)
			So(ep.FreeWindow(), ShouldResemble, access.FreeRange{Start: 5, End: 20})

			So(series.Next("e1").MustGet().ID, ShouldEqual, "e2")
			So(series.Next("e2").MustGet().ID, ShouldEqual, "e3")
			So(series.Next("e3").IsPresent(), ShouldBeFalse)

			Convey("A paid episode without an access block keeps its preview window", func() {
				paid := series.Episodes[2]
				policy := access.Policy{Viewer: paid.Viewer(""), Window: paid.FreeWindow(), Duration: paid.Duration}
				So(paid.FreeWindow(), ShouldResemble, access.FreeRange{Start: 0, End: 60})
				So(policy.IsFree(), ShouldBeFalse)
				So(policy.CanSeekTo(250).Allowed, ShouldBeFalse)
				So(policy.PaywallDue(61), ShouldBeTrue)
			})
		})

		Convey("Ids are escaped into a single path segment", func() {
			So(client.RecordView(context.Background(), "a/b"), ShouldBeNil)
			_, err := client.Series(context.Background(), "s/1")
			So(err, ShouldBeNil)
			calls, _, _ := rec.snapshot()
			So(calls, ShouldContain, "POST /videos/a%2Fb/view")
			So(calls, ShouldContain, "GET /series/s%2F1")
		})
	})

	Convey("Given an unreachable backend", t, func() {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		client, err := New(Options{BaseURL: url})
		So(err, ShouldBeNil)

		_, err = client.FetchPage(context.Background(), 1, 6)
		So(IsNetwork(err), ShouldBeTrue)
	})

	Convey("An empty base url is rejected", t, func() {
		_, err := New(Options{})
		So(err, ShouldNotBeNil)
	})
}
