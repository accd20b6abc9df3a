package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"
	"voucher_wheel/internal/pkg/config"
	"voucher_wheel/pkg/utils"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

type playResponse struct {
	Code int `json:"code"`
	Data struct {
		Success bool   `json:"success"`
		Won     bool   `json:"won"`
		Error   string `json:"error"`
		Voucher *struct {
			Code string `json:"code"`
		} `json:"voucher"`
	} `json:"data"`
}

type summary struct {
	mu        sync.Mutex
	wins      int
	losses    int
	rejected  map[string]int
	failures  int
	codes     map[string]int
	durations []time.Duration
}

func main() {
	app := &cli.App{
		Name:  "stress_tool",
		Usage: "fire concurrent plays at a running server and check the daily prize cap",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base-url", Value: "http://localhost:8080"},
			&cli.IntFlag{Name: "users", Value: 50, Usage: "distinct users playing at once"},
			&cli.IntFlag{Name: "plays", Value: 2, Usage: "plays per user"},
			&cli.IntFlag{Name: "expect-prizes", Value: -1, Usage: "fail when wins exceed this number"},
			&cli.StringFlag{Name: "secret", EnvVars: []string{"JWT_SECRET"}, Required: true, Usage: "JWT secret of the server"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	config.GlobalConfig.JWT.Secret = c.String("secret")

	client := newHTTPClient()
	users := c.Int("users")
	plays := c.Int("plays")
	endpoint := c.String("base-url") + "/game/play"

	tokens := make([]string, users)
	for i := range tokens {
		token, _, err := utils.GenerateToken("stress-"+uuid.New().String(), utils.RoleUser)
		if err != nil {
			return err
		}
		tokens[i] = token
	}

	fmt.Printf("开始压测：%d 个用户，每人 %d 次\n", users, plays)
	res := &summary{rejected: map[string]int{}, codes: map[string]int{}}
	start := time.Now()

	var wg sync.WaitGroup
	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			// 同一用户的连续两次抽奖也并发发出
			var inner sync.WaitGroup
			for j := 0; j < plays; j++ {
				inner.Add(1)
				go func() {
					defer inner.Done()
					res.record(play(client, endpoint, token))
				}()
			}
			inner.Wait()
		}(token)
	}
	wg.Wait()

	res.print(time.Since(start))

	for code, n := range res.codes {
		if n > 1 {
			return fmt.Errorf("voucher %s awarded %d times", code, n)
		}
	}
	if limit := c.Int("expect-prizes"); limit >= 0 && res.wins > limit {
		return fmt.Errorf("%d wins exceed the daily pool of %d", res.wins, limit)
	}
	return nil
}

func newHTTPClient() *http.Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	return &http.Client{Transport: t, Timeout: 10 * time.Second}
}

type outcome struct {
	resp     *playResponse
	err      error
	duration time.Duration
}

func play(client *http.Client, endpoint, token string) outcome {
	start := time.Now()
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(nil))
	if err != nil {
		return outcome{err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return outcome{err: err, duration: time.Since(start)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return outcome{err: err, duration: time.Since(start)}
	}
	if resp.StatusCode != http.StatusOK {
		return outcome{err: fmt.Errorf("status %d: %s", resp.StatusCode, body), duration: time.Since(start)}
	}

	var pr playResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return outcome{err: err, duration: time.Since(start)}
	}
	return outcome{resp: &pr, duration: time.Since(start)}
}

func (s *summary) record(o outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.durations = append(s.durations, o.duration)
	switch {
	case o.err != nil:
		s.failures++
	case !o.resp.Data.Success:
		s.rejected[o.resp.Data.Error]++
	case o.resp.Data.Won:
		s.wins++
		if o.resp.Data.Voucher != nil {
			s.codes[o.resp.Data.Voucher.Code]++
		}
	default:
		s.losses++
	}
}

func (s *summary) print(elapsed time.Duration) {
	total := len(s.durations)
	var sum time.Duration
	for _, d := range s.durations {
		sum += d
	}
	avg := time.Duration(0)
	if total > 0 {
		avg = sum / time.Duration(total)
	}

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", elapsed)
	fmt.Printf("总请求数: %d, QPS: %.2f, 平均延迟: %v\n", total, float64(total)/elapsed.Seconds(), avg)
	fmt.Printf("中奖: %d (券码去重: %d)\n", s.wins, len(s.codes))
	fmt.Printf("未中奖: %d\n", s.losses)
	for reason, n := range s.rejected {
		fmt.Printf("被拒绝 %s: %d\n", reason, n)
	}
	fmt.Printf("请求失败: %d\n", s.failures)
	fmt.Println("--------------------------------------------------")
}
