package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// CognitoDirectory implements Directory against an AWS Cognito user pool.
type CognitoDirectory struct {
	client     *cognitoidentityprovider.Client
	userPoolID string
}

// NewCognitoDirectory builds a Cognito-backed directory client. When keyID is
// empty the SDK's ambient credential chain (env vars, instance role) is used.
func NewCognitoDirectory(region, userPoolID, keyID, secret string) *CognitoDirectory {
	opts := cognitoidentityprovider.Options{Region: region}
	if keyID != "" {
		opts.Credentials = credentials.NewStaticCredentialsProvider(keyID, secret, "")
	}
	return &CognitoDirectory{
		client:     cognitoidentityprovider.New(opts),
		userPoolID: userPoolID,
	}
}

// GetUserEmail resolves userID to the account's email attribute.
func (d *CognitoDirectory) GetUserEmail(ctx context.Context, userID string) (string, error) {
	out, err := d.client.AdminGetUser(ctx, &cognitoidentityprovider.AdminGetUserInput{
		UserPoolId: aws.String(d.userPoolID),
		Username:   aws.String(userID),
	})
	if err != nil {
		var notFound *types.UserNotFoundException
		if errors.As(err, &notFound) {
			return "", ErrUserNotFound
		}
		return "", err
	}
	for _, attr := range out.UserAttributes {
		if aws.ToString(attr.Name) == "email" {
			return aws.ToString(attr.Value), nil
		}
	}
	return "", nil
}

// CreateUser provisions a Cognito account for email. Cognito emails the
// temporary password to the new user; we only hand back the canonical
// username the pool assigned.
func (d *CognitoDirectory) CreateUser(ctx context.Context, email, temporaryPassword string) (string, error) {
	out, err := d.client.AdminCreateUser(ctx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId:        aws.String(d.userPoolID),
		Username:          aws.String(email),
		TemporaryPassword: aws.String(temporaryPassword),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("email_verified"), Value: aws.String("true")},
		},
		ForceAliasCreation:     false,
		DesiredDeliveryMediums: []types.DeliveryMediumType{types.DeliveryMediumTypeEmail},
	})
	if err != nil {
		return "", err
	}
	if out.User == nil || out.User.Username == nil {
		return "", fmt.Errorf("identity provider returned no canonical username for %s", email)
	}
	return aws.ToString(out.User.Username), nil
}
