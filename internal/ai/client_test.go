package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"tablegen/internal/config"
	"tablegen/internal/pkg/apperr"
)

// countingClient 记录调用次数，用于断言没有发起网络请求
type countingClient struct {
	calls int
}

func (c *countingClient) Do(req *http.Request) (*http.Response, error) {
	c.calls++
	return nil, errors.New("unexpected network call")
}

func testSettings(base string) *config.ChatSettings {
	return &config.ChatSettings{
		APIKey:       "sk-test",
		Model:        "deepseek-chat",
		APIBase:      base,
		Temperature:  0.3,
		MaxTokens:    512,
		PromptSuffix: config.DefaultPromptSuffix,
	}
}

func TestClient_Send(t *testing.T) {
	Convey("Client.Send 完成一次对话补全往返", t, func() {
		ctx := context.Background()

		Convey("空白输入不发起网络请求", func() {
			hc := &countingClient{}
			client := NewClient(testSettings("http://example.invalid"), WithHTTPClient(hc))

			for _, prompt := range []string{"", "   ", "\n\t "} {
				resp, err := client.Send(ctx, prompt)
				So(resp, ShouldBeNil)
				So(errors.Is(err, apperr.ErrInvalidInput), ShouldBeTrue)
			}
			So(hc.calls, ShouldEqual, 0)
		})

		Convey("请求头和请求体符合约定", func() {
			var (
				gotPath   string
				gotAuth   string
				gotCT     string
				gotMethod string
				gotBody   ChatRequest
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotMethod = r.Method
				gotAuth = r.Header.Get("Authorization")
				gotCT = r.Header.Get("Content-Type")
				data, _ := io.ReadAll(r.Body)
				_ = json.Unmarshal(data, &gotBody)
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"| A | B |\n| 1 | 2 |"}}]}`))
			}))
			defer srv.Close()

			client := NewClient(testSettings(srv.URL))
			resp, err := client.Send(ctx, "list two numbers")
			So(err, ShouldBeNil)

			So(gotMethod, ShouldEqual, http.MethodPost)
			So(gotPath, ShouldEqual, "/chat/completions")
			So(gotAuth, ShouldEqual, "Bearer sk-test")
			So(gotCT, ShouldEqual, "application/json")
			So(gotBody.Model, ShouldEqual, "deepseek-chat")
			So(gotBody.Temperature, ShouldEqual, 0.3)
			So(gotBody.MaxTokens, ShouldEqual, 512)
			So(len(gotBody.Messages), ShouldEqual, 1)
			So(gotBody.Messages[0].Role, ShouldEqual, "user")
			So(gotBody.Messages[0].Content, ShouldEqual, "list two numbers\n"+config.DefaultPromptSuffix)

			So(resp.StatusCode, ShouldEqual, http.StatusOK)
			body, ok := resp.Body.(map[string]any)
			So(ok, ShouldBeTrue)
			So(body["choices"], ShouldNotBeNil)
		})

		Convey("非 200 响应返回 request 错误并携带原始响应体", func() {
			const errBody = `{"error":{"message":"Authentication Fails"}}`
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(errBody))
			}))
			defer srv.Close()

			_, err := NewClient(testSettings(srv.URL)).Send(ctx, "anything")
			So(errors.Is(err, apperr.ErrRequest), ShouldBeTrue)
			So(apperr.DetailOf(err), ShouldEqual, errBody)
		})

		Convey("200 以外的成功状态码同样视为失败", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusAccepted)
				_, _ = w.Write([]byte("queued"))
			}))
			defer srv.Close()

			_, err := NewClient(testSettings(srv.URL)).Send(ctx, "anything")
			So(errors.Is(err, apperr.ErrRequest), ShouldBeTrue)
			So(apperr.DetailOf(err), ShouldEqual, "queued")
		})

		Convey("非 JSON 响应体返回 decode 错误", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>gateway</html>"))
			}))
			defer srv.Close()

			_, err := NewClient(testSettings(srv.URL)).Send(ctx, "anything")
			So(errors.Is(err, apperr.ErrDecode), ShouldBeTrue)
		})

		Convey("网络失败返回 request 错误", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			base := srv.URL
			srv.Close()

			_, err := NewClient(testSettings(base)).Send(ctx, "anything")
			So(errors.Is(err, apperr.ErrRequest), ShouldBeTrue)
		})
	})
}
