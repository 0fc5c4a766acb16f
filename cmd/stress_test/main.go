package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/rl1809/cart-inventory/internal/adapter/handler"
	"github.com/rl1809/cart-inventory/internal/core/domain"
)

const itemID = "stress-item"

func main() {
	addr := flag.String("addr", "localhost:50051", "gRPC address of the server")
	totalRequests := flag.Int("n", 200, "concurrent addToCart calls")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("failed to connect")
	}
	defer conn.Close()
	client := handler.NewToolServiceClient(conn)

	// Fresh user so previous runs do not interfere
	userID := "stress-" + uuid.NewString()
	ctx := metadata.AppendToOutgoingContext(context.Background(), handler.MetadataUserID, userID)

	var successCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			res, err := client.CallTool(ctx, &handler.CallToolRequest{
				Tool:      "addToCart",
				Arguments: json.RawMessage(fmt.Sprintf(`{"itemId":%q,"quantity":1}`, itemID)),
			})
			if err == nil && !res.IsError {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("User:             %s\n", userID)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	res, err := client.CallTool(ctx, &handler.CallToolRequest{Tool: "getCartItemCount"})
	if err != nil || res.IsError {
		log.Fatal().Err(err).Interface("result", res).Msg("failed to read cart count")
	}
	var count domain.CartCount
	if err := json.Unmarshal([]byte(res.Content[0].Text), &count); err != nil {
		log.Fatal().Err(err).Msg("failed to decode cart count")
	}
	fmt.Printf("Final Quantity:   %d\n", count.TotalItems)

	if count.TotalItems == int(success) && count.UniqueItems == 1 {
		fmt.Printf("PASS: every successful add is reflected (%d)\n", success)
	} else {
		fmt.Printf("FAIL: expected quantity %d on one line, got %d on %d lines\n",
			success, count.TotalItems, count.UniqueItems)
	}

	if _, err := client.CallTool(ctx, &handler.CallToolRequest{Tool: "clearCart"}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
	}
}
