package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/otiai10/copy"
	"github.com/tus/tusd/pkg/filestore"
	"github.com/tus/tusd/pkg/handler"
	"go.uber.org/zap"
)

const uploadPrefix = "/upload/tus/"

func move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Copy file to destination, then drop the source
	if err := copy.Copy(src, dst); err != nil {
		return err
	}
	return os.RemoveAll(src)
}

// setupTusUpload mounts resumable uploads. A finished upload lands in the
// directory named by its "dir" metadata, or the current directory.
func setupTusUpload(app *fiber.App, s *server) error {
	if !s.cfg.Browse.Write {
		s.logger.Info("upload disabled: not in write mode")
		return nil
	}

	uploadsDir := s.cfg.Server.UploadDir
	if err := os.MkdirAll(uploadsDir, 0755); err != nil {
		return fmt.Errorf("create uploads directory: %w", err)
	}

	store := filestore.New(uploadsDir)
	composer := handler.NewStoreComposer()
	store.UseIn(composer)

	tusHandler, err := handler.NewHandler(handler.Config{
		StoreComposer:         composer,
		NotifyCompleteUploads: true,
		BasePath:              uploadPrefix,
	})
	if err != nil {
		return fmt.Errorf("create tus handler: %w", err)
	}

	go func() {
		for event := range tusHandler.CompleteUploads {
			s.finishUpload(uploadsDir, event.Upload)
		}
	}()

	group := app.Group(uploadPrefix, adaptor.HTTPMiddleware(tusHandler.Middleware))
	group.Post("", adaptor.HTTPHandlerFunc(tusHandler.PostFile))
	group.Head(":id", adaptor.HTTPHandlerFunc(tusHandler.HeadFile))
	group.Patch(":id", adaptor.HTTPHandlerFunc(tusHandler.PatchFile))
	group.Get(":id", adaptor.HTTPHandlerFunc(tusHandler.GetFile))
	group.Delete(":id", adaptor.HTTPHandlerFunc(tusHandler.DelFile))

	s.logger.Info("upload handler ready", zap.String("staging", uploadsDir))
	return nil
}

func (s *server) finishUpload(uploadsDir string, info handler.FileInfo) {
	filename := filepath.Base(info.MetaData["filename"])
	if filename == "." || filename == string(filepath.Separator) {
		filename = info.ID
	}
	dir := info.MetaData["dir"]
	if dir == "" || !filepath.IsAbs(dir) {
		dir = s.dispatcher.Session().Cwd()
	}

	tempFile := filepath.Join(uploadsDir, info.ID)
	finalPath := filepath.Join(dir, filename)

	var errs []string
	if _, err := os.Lstat(finalPath); err == nil {
		errs = append(errs, finalPath+": destination exists")
		os.Remove(tempFile)
	} else if err := move(tempFile, finalPath); err != nil {
		errs = append(errs, err.Error())
	}
	os.Remove(tempFile + ".info")

	if len(errs) > 0 {
		s.logger.Error("upload not placed", zap.String("id", info.ID), zap.String("dest", finalPath), zap.Strings("errors", errs))
	} else {
		s.logger.Info("upload completed", zap.String("id", info.ID), zap.String("dest", finalPath))
	}
	if err := s.journal.Record("upload", []string{filename}, finalPath, errs); err != nil {
		s.logger.Error("journal write failed", zap.Error(err))
	}
	s.hub.broadcast(wsMessage{Type: msgRefresh, Cwd: dir})
}
