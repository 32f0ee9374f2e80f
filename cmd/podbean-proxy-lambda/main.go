// podbean-proxy-lambda runs the Podbean API proxy as an AWS Lambda (or
// Netlify) function behind an API Gateway proxy integration.
package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	podbeanproxy "github.com/goliatone/go-podbean-proxy"
	"github.com/goliatone/go-podbean-proxy/adapters/gologger"
)

func main() {
	logger := gologger.NewSlogLogger(gologger.SlogOptions{
		Output: os.Stderr,
		Level:  os.Getenv("PODBEAN_PROXY_LOG_LEVEL"),
		Format: gologger.FormatJSON,
	})

	svc, err := podbeanproxy.Setup(podbeanproxy.Config{}, podbeanproxy.WithLoggerProvider(gologger.NewProvider(logger)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: setup proxy: %v\n", err)
		os.Exit(1)
	}
	facade, err := podbeanproxy.NewFacade(svc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	lambda.Start(facade.Handlers().Lambda.Handle)
}
