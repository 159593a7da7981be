package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/jamiealquiza/envy"
)

const defaultDestBucket = "aeb-image-scaler-destination"

type config struct {
	destBucket               *string
	region                   *string
	store                    *string
	endpoint                 *string
	accessKey                *string
	secretKey                *string
	useSSL                   *bool
	eventFile                *string
	sqsName                  *string
	sqsRegion                *string
	sqsPollTimeout           *int64
	sqsPollMaxMessages       *int64
	sqsVisibilityTimeout     *int64
	doneAfterCountEmptyPolls *int
	sqsDelete                *bool
	logVerbose               *bool
}

func newConfig(fs *flag.FlagSet) config {
	return config{
		fs.String("destbucket", defaultDestBucket, "Name of the bucket receiving resized images"),
		fs.String("region", "", "AWS region of the buckets (default: SDK region chain)"),
		fs.String("store", "s3", "Object store backend: s3 or minio"),
		fs.String("endpoint", "", "Object store endpoint, required for minio, optional for S3-compatible services"),
		fs.String("accesskey", "", "MinIO access key"),
		fs.String("secretkey", "", "MinIO secret key"),
		fs.Bool("ssl", true, "Use TLS to reach MinIO"),
		fs.String("event", "", "Invoke once with the S3 event JSON in this file, then exit"),
		fs.String("sqs", "", "Poll this SQS queue for S3 notifications instead of running as a Lambda"),
		fs.String("sqsregion", "", "AWS region of SQS queue (default: -region)"),
		fs.Int64("polltimeout", 10, "SQS slow poll timeout, 1-20"),
		fs.Int64("pollmessages", 10, "SQS maximum messages per poll, 1-10"),
		fs.Int64("sqsprocessingtime", 300, "SQS visibility timeout"),
		fs.Int("emptypolls", 3, "How many consecutive times to poll SQS and receive zero messages before exiting, 1+"),
		fs.Bool("deletesqs", true, "Delete messages from SQS after processing"),
		fs.Bool("verbose", false, "Show detailed information during run"),
	}
}

func validateConfig(conf config) error {
	switch {
	case *conf.destBucket == "":
		return errors.New("destination bucket cannot be blank")
	case *conf.store != "s3" && *conf.store != "minio":
		return fmt.Errorf("unknown store %q", *conf.store)
	case *conf.store == "minio" && *conf.endpoint == "":
		return errors.New("minio store needs an endpoint")
	case *conf.eventFile != "" && *conf.sqsName != "":
		return errors.New("-event and -sqs are mutually exclusive")
	}

	if *conf.sqsName != "" {
		if *conf.sqsPollTimeout < 1 ||
			*conf.sqsPollTimeout > 20 ||
			*conf.sqsPollMaxMessages < 1 ||
			*conf.sqsPollMaxMessages > 10 ||
			*conf.doneAfterCountEmptyPolls < 1 {
			return errors.New("SQS poll settings out of range")
		}
	}
	return nil
}

func newStore(conf config) (ObjectStore, error) {
	if *conf.store == "minio" {
		return NewMinioStore(*conf.endpoint, *conf.accessKey, *conf.secretKey, *conf.useSSL)
	}

	sess, err := awsSession(*conf.region, *conf.endpoint)
	if err != nil {
		return nil, fmt.Errorf("S3 Session Error: %v", err)
	}
	return NewS3Store(sess), nil
}

func main() {

	conf := newConfig(flag.CommandLine)
	envy.Parse("SCALER")
	flag.Parse()

	if err := validateConfig(conf); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	if err := logInit(conf); err != nil {
		fmt.Fprintf(os.Stderr, "Logger Error: %v\n", err)
		os.Exit(1)
	}
	defer logFlush()

	logger.Infow("Configuration",
		"destbucket", *conf.destBucket,
		"store", *conf.store,
		"endpoint", *conf.endpoint,
		"region", *conf.region,
	)

	// one store client per process, shared by every invocation
	store, err := newStore(conf)
	if err != nil {
		logger.Fatalf("Store Error: %v", err)
	}
	handler := NewHandler(store, *conf.destBucket, logger)

	switch {
	case *conf.eventFile != "":
		if err := invokeEventFile(context.Background(), *conf.eventFile, handler, os.Stdout); err != nil {
			logger.Fatalf("%v", err)
		}

	case *conf.sqsName != "":
		ctx, cancel := context.WithCancel(context.Background())
		gracefulStop(cancel)

		sqsRegion := *conf.sqsRegion
		if sqsRegion == "" {
			sqsRegion = *conf.region
		}
		sess, err := awsSession(sqsRegion, "")
		if err != nil {
			logger.Fatalf("SQS Session Error: %v", err)
		}
		poller, err := newSQSPoller(ctx, conf, sqs.New(sess))
		if err != nil {
			logger.Fatalf("%v", err)
		}
		count := pollSQS(ctx, conf, poller, handler)
		logger.Infof("Handled %d notifications", count)

	default:
		lambda.Start(handler.Handle)
	}
}
