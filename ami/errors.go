/*
Copyright © 2025 Jayson Grace <jayson.e.grace@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/

package ami

import (
	"fmt"
	"strings"
)

// CheckError reports a failed image check with a remediation hint.
type CheckError struct {
	Message     string
	Cause       error
	Remediation string
}

func (e *CheckError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Remediation != "" {
		return fmt.Sprintf("%s\n\nRemediation: %s", msg, e.Remediation)
	}
	return msg
}

func (e *CheckError) Unwrap() error {
	return e.Cause
}

type errorPattern struct {
	anyPatterns []string
	msgSuffix   string
	remediation string
}

var errorPatterns = []errorPattern{
	{
		anyPatterns: []string{"InvalidAMIID.NotFound", "InvalidAMIID.Unavailable"},
		msgSuffix:   "image not found",
		remediation: "AMI IDs are region-specific. Check base_ami_id against ec2_region with 'aws ec2 describe-images --image-ids <ami-id> --region <region>'.",
	},
	{
		anyPatterns: []string{"InvalidAMIID.Malformed"},
		msgSuffix:   "malformed image id",
		remediation: "base_ami_id must look like ami-0123456789abcdef0.",
	},
	{
		anyPatterns: []string{"AuthFailure", "UnauthorizedOperation", "AccessDenied"},
		msgSuffix:   "permission denied",
		remediation: "The AWS credentials need ec2:DescribeImages. Check aws_access_key_id and aws_secret_access_key in the secure variable files.",
	},
	{
		anyPatterns: []string{"no EC2 IMDS role found", "failed to retrieve credentials", "NoCredentialProviders"},
		msgSuffix:   "no AWS credentials",
		remediation: "Provide aws_access_key_id and aws_secret_access_key in the variables or configure an AWS profile.",
	},
}

// wrapWithRemediation wraps err with the hint of the first matching known
// AWS error, or plainly when none matches.
func wrapWithRemediation(err error, context string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, p := range errorPatterns {
		for _, pat := range p.anyPatterns {
			if strings.Contains(msg, pat) {
				return &CheckError{
					Message:     fmt.Sprintf("%s: %s", context, p.msgSuffix),
					Cause:       err,
					Remediation: p.remediation,
				}
			}
		}
	}
	return fmt.Errorf("%s: %w", context, err)
}
