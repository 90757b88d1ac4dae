//go:build lambda
// +build lambda

package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/cyphera/cyphera-wallet-policy/internal/logger"
	"github.com/cyphera/cyphera-wallet-policy/internal/server"
	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
)

var ginLambda *ginadapter.GinLambda

func init() {
	ctx := context.Background()

	logger.InitLogger(os.Getenv("STAGE"))

	cfg, awsCfg, err := server.LoadConfig(ctx)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// The dispatcher lives as long as the execution environment.
	srv, err := server.New(ctx, cfg, server.Options{AWS: &awsCfg})
	if err != nil {
		logger.Fatal("Failed to initialize server", zap.Error(err))
	}

	ginLambda = ginadapter.New(srv.Router)
}

func Handler(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	logger.Debug("Received Lambda request",
		zap.String("path", req.Path),
		zap.String("request", spew.Sdump(req)),
	)

	return ginLambda.ProxyWithContext(ctx, req)
}

func main() {
	defer logger.Sync()
	lambda.Start(Handler)
}
