// Package s3 stores generated resume PDFs in Amazon S3 or an S3-compatible
// service.
//
// Each PDF belongs to one assistant message and lives under
// chats/{chatID}/{messageID}.pdf. Upload returns the public URL that is
// persisted as Message.PDFURL:
//
//	store, err := s3.New(ctx, s3.Config{
//		Bucket: "coomb-documents",
//		Region: "us-east-1",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	url, err := store.Upload(ctx, chatID, messageID, pdfReader)
//
// MinIO, DigitalOcean Spaces, and other S3-compatible services work through
// Config.Endpoint and Config.ForcePathStyle. Failures surface as the package
// sentinels (ErrDocumentNotFound, ErrAccessDenied, ErrServiceUnavailable)
// checked with errors.Is.
package s3
