package plugin

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/vivekkundariya/lo1/internal/application/ports"
	"github.com/vivekkundariya/lo1/internal/config"
	"github.com/vivekkundariya/lo1/internal/ui"
)

const localStackType = "localstack"

func init() {
	Register(localStackType, func(specifier string) ports.Plugin {
		return &LocalStack{endpoint: specifier}
	})
}

// LocalStack provisions AWS resources (SQS/SNS/S3) against a LocalStack
// container declared as a plugin-typed service. Adapted from the
// teacher's internal/infrastructure/aws.LocalStackProvisioner: the
// AWS SDK wiring (custom endpoint resolver, static test credentials,
// idempotent queue/topic/bucket creation) is kept close to verbatim;
// the input shape moves from the teacher's typed
// infrastructure.InfrastructureRequirements to ServiceSpec.PluginConfig,
// and the teacher's template-based endpoint resolver
// (generator.EnvironmentResolver, "${sqs.queue.arn}" substitution) is
// dropped in favor of resolving queue ARNs inline, since the new single-
// manifest schema has no cross-service template language.
type LocalStack struct {
	endpoint string
}

func (p *LocalStack) Type() string { return localStackType }

func (p *LocalStack) ContributeCompose(cfg *config.WorkspaceConfig) (ports.ComposeContribution, bool) {
	names := servicesOfType(cfg, localStackType)
	if len(names) == 0 {
		return ports.ComposeContribution{}, false
	}
	services := map[string]any{}
	for _, name := range names {
		svc := cfg.Services[name]
		port := svc.Port
		if port == 0 {
			port = 4566
		}
		hostPort := svc.HostPort
		if hostPort == 0 {
			hostPort = port
		}
		services[name] = map[string]any{
			"image": "localstack/localstack:3",
			"ports": []string{fmt.Sprintf("%d:%d", hostPort, port)},
			"environment": map[string]string{
				"SERVICES":     "sqs,sns,s3",
				"GATEWAY_PORT": fmt.Sprintf("%d", port),
			},
		}
	}
	return ports.ComposeContribution{Services: services}, true
}

func (p *LocalStack) ContainerConfig(serviceName string, svc config.ServiceSpec) (ports.ContainerConfig, bool) {
	return ports.ContainerConfig{}, false
}

// ProvisionInfra creates every queue/topic/bucket declared under
// PluginConfig for each localstack-typed service in cfg.
func (p *LocalStack) ProvisionInfra(ctx context.Context, cfg *config.WorkspaceConfig) error {
	for _, name := range servicesOfType(cfg, localStackType) {
		svc := cfg.Services[name]
		endpoint := p.endpointFor(svc)
		if err := p.provisionOne(ctx, endpoint, svc.PluginConfig); err != nil {
			return fmt.Errorf("localstack %q: %w", name, err)
		}
	}
	return nil
}

// SeedData has nothing to do for LocalStack: queues/topics/buckets are
// the provisioned resources themselves, there is no separate seed step.
func (p *LocalStack) SeedData(ctx context.Context, cfg *config.WorkspaceConfig) error {
	return nil
}

func (p *LocalStack) endpointFor(svc config.ServiceSpec) string {
	if p.endpoint != "" {
		return p.endpoint
	}
	hostPort := svc.HostPort
	if hostPort == 0 {
		hostPort = svc.Port
	}
	if hostPort == 0 {
		hostPort = 4566
	}
	return fmt.Sprintf("http://localhost:%d", hostPort)
}

func (p *LocalStack) provisionOne(ctx context.Context, endpoint string, pluginConfig map[string]any) error {
	ui.Debug("Connecting to LocalStack at %s", endpoint)

	cfg, err := createLocalStackConfig(endpoint)
	if err != nil {
		return fmt.Errorf("failed to create AWS config: %w", err)
	}

	sqsClient := sqs.NewFromConfig(cfg)
	snsClient := sns.NewFromConfig(cfg)
	s3Client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	queueArns := make(map[string]string)

	for _, queue := range parseQueues(pluginConfig) {
		if queue.DLQ {
			dlqName := queue.Name + "-dlq"
			if _, exists := getExistingQueueURL(ctx, sqsClient, dlqName); exists {
				ui.Infof("SQS DLQ already exists: %s", dlqName)
			} else {
				ui.SubStep("Creating SQS DLQ: %s", dlqName)
				if _, err := sqsClient.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String(dlqName)}); err != nil {
					return fmt.Errorf("failed to create DLQ %s: %w", dlqName, err)
				}
				ui.Successf("Created SQS DLQ: %s", dlqName)
			}
		}

		var queueURL string
		if existingURL, exists := getExistingQueueURL(ctx, sqsClient, queue.Name); exists {
			ui.Infof("SQS queue already exists: %s", queue.Name)
			queueURL = existingURL
		} else {
			ui.SubStep("Creating SQS queue: %s", queue.Name)
			result, err := sqsClient.CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String(queue.Name)})
			if err != nil {
				return fmt.Errorf("failed to create queue %s: %w", queue.Name, err)
			}
			queueURL = *result.QueueUrl
			ui.Successf("Created SQS queue: %s", queue.Name)
		}

		attrs, _ := sqsClient.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
			QueueUrl:       aws.String(queueURL),
			AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameQueueArn},
		})
		if attrs != nil && attrs.Attributes != nil {
			queueArns[queue.Name] = attrs.Attributes["QueueArn"]
		}
	}

	for _, topic := range parseTopics(pluginConfig) {
		ui.SubStep("Ensuring SNS topic: %s", topic.Name)
		topicResult, err := snsClient.CreateTopic(ctx, &sns.CreateTopicInput{Name: aws.String(topic.Name)})
		if err != nil {
			return fmt.Errorf("failed to create topic %s: %w", topic.Name, err)
		}
		ui.Successf("SNS topic ready: %s", topic.Name)

		for _, sub := range topic.Subscriptions {
			endpoint := sub.Endpoint
			if arn, ok := queueArns[sub.Endpoint]; ok {
				// Subscriptions may reference a queue by its bare name
				// declared earlier in the same manifest's queues list.
				endpoint = arn
			}

			ui.SubStep("Subscribing %s to topic %s", endpoint, topic.Name)
			subResult, err := snsClient.Subscribe(ctx, &sns.SubscribeInput{
				TopicArn: topicResult.TopicArn,
				Protocol: aws.String(sub.Protocol),
				Endpoint: aws.String(endpoint),
			})
			if err != nil {
				return fmt.Errorf("failed to subscribe %s to %s: %w", endpoint, topic.Name, err)
			}

			for attrName, attrValue := range sub.Attributes {
				ui.Infof("Setting subscription attribute: %s", attrName)
				if _, err := snsClient.SetSubscriptionAttributes(ctx, &sns.SetSubscriptionAttributesInput{
					SubscriptionArn: subResult.SubscriptionArn,
					AttributeName:   aws.String(attrName),
					AttributeValue:  aws.String(attrValue),
				}); err != nil {
					return fmt.Errorf("failed to set attribute %s on subscription: %w", attrName, err)
				}
			}
		}
	}

	for _, bucket := range parseBuckets(pluginConfig) {
		if getExistingBucket(ctx, s3Client, bucket) {
			ui.Infof("S3 bucket already exists: %s", bucket)
		} else {
			ui.SubStep("Creating S3 bucket: %s", bucket)
			if _, err := s3Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
			ui.Successf("Created S3 bucket: %s", bucket)
		}
	}

	return nil
}

type queueSpec struct {
	Name string
	DLQ  bool
}

type topicSpec struct {
	Name          string
	Subscriptions []subscriptionSpec
}

type subscriptionSpec struct {
	Protocol   string
	Endpoint   string
	Attributes map[string]string
}

func parseQueues(pluginConfig map[string]any) []queueSpec {
	var out []queueSpec
	for _, raw := range asSlice(pluginConfig["queues"]) {
		m, ok := raw.(map[string]any)
		if !ok {
			if name, ok := raw.(string); ok {
				out = append(out, queueSpec{Name: name})
			}
			continue
		}
		out = append(out, queueSpec{
			Name: asString(m["name"]),
			DLQ:  asBool(m["dlq"]),
		})
	}
	return out
}

func parseTopics(pluginConfig map[string]any) []topicSpec {
	var out []topicSpec
	for _, raw := range asSlice(pluginConfig["topics"]) {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		topic := topicSpec{Name: asString(m["name"])}
		for _, rawSub := range asSlice(m["subscriptions"]) {
			sm, ok := rawSub.(map[string]any)
			if !ok {
				continue
			}
			attrs := map[string]string{}
			if am, ok := sm["attributes"].(map[string]any); ok {
				for k, v := range am {
					attrs[k] = asString(v)
				}
			}
			topic.Subscriptions = append(topic.Subscriptions, subscriptionSpec{
				Protocol:   asString(sm["protocol"]),
				Endpoint:   asString(sm["endpoint"]),
				Attributes: attrs,
			})
		}
		out = append(out, topic)
	}
	return out
}

func parseBuckets(pluginConfig map[string]any) []string {
	var out []string
	for _, raw := range asSlice(pluginConfig["buckets"]) {
		switch v := raw.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			out = append(out, asString(v["name"]))
		}
	}
	return out
}

func asSlice(v any) []any {
	switch s := v.(type) {
	case []any:
		return s
	default:
		return nil
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func servicesOfType(cfg *config.WorkspaceConfig, typeName string) []string {
	var names []string
	for name, svc := range cfg.Services {
		if svc.Type == typeName {
			names = append(names, name)
		}
	}
	return names
}

func getExistingQueueURL(ctx context.Context, client *sqs.Client, queueName string) (string, bool) {
	result, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queueName)})
	if err != nil {
		return "", false
	}
	return *result.QueueUrl, true
}

func getExistingBucket(ctx context.Context, client *s3.Client, bucketName string) bool {
	_, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucketName)})
	return err == nil
}

func createLocalStackConfig(endpoint string) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint, SigningRegion: "us-east-1"}, nil
			})),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
	)
}
