// Command token mints access tokens for local development and manual testing.
//
//	go run ./cmd/token -role staff -user 0190... -bases 0190...,0190...
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harvestlink/harvest-backend-go/internal/config"
	"github.com/harvestlink/harvest-backend-go/internal/domain/user"
	"github.com/harvestlink/harvest-backend-go/internal/pkg/jwt"
)

func main() {
	role := flag.String("role", string(user.RoleAdmin), "admin, base_manager, staff or worker")
	userID := flag.String("user", "", "user id (random when empty)")
	workerID := flag.String("worker", "", "worker id, required for the worker role")
	bases := flag.String("bases", "", "comma separated base ids for staff")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error loading config:", err)
		os.Exit(1)
	}

	r := user.Role(*role)
	if !r.IsValid() {
		fmt.Fprintln(os.Stderr, "unknown role:", *role)
		os.Exit(2)
	}
	if r == user.RoleWorker && *workerID == "" {
		fmt.Fprintln(os.Stderr, "-worker is required for the worker role")
		os.Exit(2)
	}

	claims := jwt.AccessClaims{
		UserID: *userID,
		Role:   r,
	}
	if claims.UserID == "" {
		claims.UserID = uuid.Must(uuid.NewV7()).String()
	}
	if *workerID != "" {
		claims.WorkerID = workerID
	}
	for _, id := range strings.Split(*bases, ",") {
		if id = strings.TrimSpace(id); id != "" {
			claims.BaseIDs = append(claims.BaseIDs, id)
		}
	}

	token, exp, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration).GenerateAccessToken(claims)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to sign token:", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "user=%s role=%s expires=%s\n", claims.UserID, r, time.Unix(exp, 0).Format(time.RFC3339))
}
