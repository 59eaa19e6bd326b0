// Package publish uploads packaged artifacts to object storage.
//
// Uploader implementations cover the b2 command-line tool and any
// S3-compatible API. Publisher attempts every artifact even after failures
// and reports the failed ones in a services.PartialPublishError; successful
// uploads are never rolled back.
package publish
