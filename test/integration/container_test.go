package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

const postgresImage = "postgres:16-alpine"

// postgresURL returns FOLLOW_DATABASE_URL when set. Otherwise it starts a
// throwaway container on a Docker-assigned loopback port.
func postgresURL(ctx context.Context) (string, func(), error) {
	if url := os.Getenv("FOLLOW_DATABASE_URL"); url != "" {
		return url, func() {}, waitForPostgres(ctx, url, 10*time.Second)
	}

	out, err := docker(ctx, "run", "-d", "--rm",
		"-p", "127.0.0.1::5432",
		"-e", "POSTGRES_USER=follow",
		"-e", "POSTGRES_PASSWORD=follow",
		"-e", "POSTGRES_DB=followtest",
		postgresImage,
	)
	if err != nil {
		return "", nil, err
	}
	id := out
	stop := func() { docker(context.Background(), "rm", "-f", id) }

	// e.g. 127.0.0.1:49153
	addr, err := docker(ctx, "port", id, "5432/tcp")
	if err != nil {
		stop()
		return "", nil, err
	}
	addr, _, _ = strings.Cut(addr, "\n")

	url := fmt.Sprintf("postgres://follow:follow@%s/followtest?sslmode=disable", addr)
	if err := waitForPostgres(ctx, url, 30*time.Second); err != nil {
		stop()
		return "", nil, err
	}
	return url, stop, nil
}

func docker(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "docker", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("docker %s: %w: %s", args[0], err, out)
	}
	return strings.TrimSpace(string(out)), nil
}

// waitForPostgres polls until the server accepts a connection. The image
// restarts postgres once during init, so a single success is re-checked.
func waitForPostgres(ctx context.Context, url string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := time.NewTicker(250 * time.Millisecond)
	defer tick.Stop()

	ready := 0
	for {
		conn, err := pgx.Connect(ctx, url)
		if err == nil {
			err = conn.Ping(ctx)
			conn.Close(ctx)
		}
		if err == nil {
			ready++
			if ready == 2 {
				return nil
			}
		} else {
			ready = 0
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres at %s not ready: %w", url, ctx.Err())
		case <-tick.C:
		}
	}
}
