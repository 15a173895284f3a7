package storage

import (
	"bytes"
	"fmt"
	"time"

	"attendtrack_go/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// ReportArchive uploads exported attendance reports to S3 so the school
// keeps an off-site copy of every download.
type ReportArchive struct {
	s3Client *s3.S3
	bucket   string
}

// NewReportArchive creates the archive client from AppConfig credentials.
func NewReportArchive() (*ReportArchive, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AppConfig.AWSRegion),
		Credentials: credentials.NewStaticCredentials(
			config.AppConfig.AWSAccessKeyID,
			config.AppConfig.AWSSecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &ReportArchive{
		s3Client: s3.New(sess),
		bucket:   config.AppConfig.S3BucketName,
	}, nil
}

// ArchiveReport stores one artifact under reports/YYYY/MM/ and returns the
// object key. The uuid suffix keeps repeated same-day exports distinct.
func (ra *ReportArchive) ArchiveReport(fileName string, data []byte) (string, error) {
	now := time.Now()
	key := fmt.Sprintf("reports/%d/%02d/%s_%s",
		now.Year(), now.Month(), uuid.New().String()[:8], fileName)

	_, err := ra.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(ra.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report to S3: %v", err)
	}
	return key, nil
}
