// file: websocket/metrics.go
package websocket

import (
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"

	"codeclash/logger"
)

// Namespace for all CodeClash metrics
var metricsNamespace = "CodeClash"

var (
	metricsEnabled bool
	cwOnce         sync.Once
	cwClient       *cloudwatch.CloudWatch
)

// EnableMetrics turns CloudWatch publishing on. Off by default so local runs
// and tests never touch the network.
func EnableMetrics() {
	metricsEnabled = true
}

// publishActiveConnections pushes the current registered connection count.
func publishActiveConnections(count int) {
	putMetric("ActiveConnections", float64(count), "Count", "")
}

// publishMatchReady counts matches reaching the ready state.
func publishMatchReady(matchID string) {
	putMetric("MatchesReady", 1, "Count", matchID)
}

// PublishSubmissionProcessed counts completed submission pipelines.
func PublishSubmissionProcessed(matchID string) {
	putMetric("SubmissionsProcessed", 1, "Count", matchID)
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func putMetric(metricName string, value float64, unit string, matchID string) {
	if !metricsEnabled {
		return
	}
	cwOnce.Do(func() {
		cwClient = cloudwatch.New(session.Must(session.NewSession()))
	})

	datum := &cloudwatch.MetricDatum{
		MetricName: aws.String(metricName),
		Timestamp:  aws.Time(time.Now()),
		Value:      aws.Float64(value),
		Unit:       aws.String(unit),
	}
	if matchID != "" {
		datum.Dimensions = []*cloudwatch.Dimension{
			{Name: aws.String("MatchId"), Value: aws.String(matchID)},
		}
	}

	_, err := cwClient.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(metricsNamespace),
		MetricData: []*cloudwatch.MetricDatum{datum},
	})
	if err != nil {
		logger.Error.Printf("[putMetric] CloudWatch metric failed (%s): %v", metricName, err)
	}
}
