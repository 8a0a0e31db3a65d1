// Package storage reads email templates from S3-compatible object storage.
//
// An S3Store satisfies mailer.Loader, so template paths in the adapter
// config become object keys (under an optional prefix):
//
//	store, err := storage.New(storage.Config{
//		Bucket:    "acme-email-templates",
//		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
//		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//		Region:    "eu-west-1",
//		Prefix:    "emails",
//	})
//	if err != nil {
//		return err
//	}
//	adapter, err := mailer.New(cfg, mailer.WithLoader(store))
//
// Errors match ErrNotFound, ErrAccessDenied, ErrReadFailed or ErrObjectTooLarge.
package storage
