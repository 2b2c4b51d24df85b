package conversation

import (
	"context"
	"fmt"
	"strings"

	"qartelbot/models"
	"qartelbot/services/menu"
	"qartelbot/services/messenger"
	"qartelbot/services/storage"

	"go.uber.org/zap"
)

const doneToken = "готово"

func listProjects(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	projects, err := e.projects.List(ctx)
	if err != nil {
		return failWith("Не удалось загрузить кейсы проектов.", err)
	}
	if len(projects) == 0 {
		e.say(ctx, ev.ChatID, "Кейсы проектов отсутствуют.")
		return nil
	}
	kb := messenger.Keyboard{}
	for _, p := range projects {
		kb = append(kb, messenger.Row(messenger.DataButton(p.Name, menu.Data(menu.ProjectView, p.ID))))
	}
	kb = append(kb, menu.BackToMain()...)
	_, err = e.msg.Send(ctx, messenger.Message{ChatID: ev.ChatID, Text: "Выберите проект:", Keyboard: kb})
	return err
}

func viewProject(e *Engine, ctx context.Context, ev Event, role models.Role, args []string) error {
	id, err := arg(args, 0)
	if err != nil {
		return err
	}
	p, err := e.projects.GetByID(ctx, id)
	if err != nil {
		return orNotFound(err, "Проект не найден.", "Не удалось загрузить проект.")
	}
	if len(p.Photos) > 0 {
		if err := e.msg.SendPhotos(ctx, ev.ChatID, p.Photos, p.Summary()); err != nil {
			e.logger.Warn("failed to send project photos", zap.String("project_id", id), zap.Error(err))
			e.say(ctx, ev.ChatID, "Произошла ошибка при отправке фотографий проекта.")
		}
	} else {
		e.say(ctx, ev.ChatID, p.Summary())
	}

	kb := messenger.Keyboard{
		messenger.Row(messenger.DataButton("Назад к кейсам", menu.Projects)),
		messenger.Row(messenger.DataButton("В главное меню", menu.MainMenu)),
	}
	if role.AtLeast(models.RoleAdmin) {
		kb = append(kb, messenger.Row(messenger.DataButton("🗑 Удалить проект", menu.Data(menu.ProjectDelete, p.ID))))
	}
	_, err = e.msg.Send(ctx, messenger.Message{ChatID: ev.ChatID, Text: "Выберите дальнейшее действие:", Keyboard: kb})
	return err
}

// deleteProject removes the record first; asset cleanup is best effort.
func deleteProject(e *Engine, ctx context.Context, ev Event, _ models.Role, args []string) error {
	id, err := arg(args, 0)
	if err != nil {
		return err
	}
	p, err := e.projects.GetByID(ctx, id)
	if err != nil {
		return orNotFound(err, "Проект не найден.", "Произошла ошибка при удалении проекта.")
	}
	if err := e.projects.Delete(ctx, id); err != nil {
		return orNotFound(err, "Проект не найден.", "Произошла ошибка при удалении проекта.")
	}
	if e.purger != nil {
		prefix := storage.ProjectFolder(p.Name) + "/"
		if err := e.purger.PurgeProjectAssets(ctx, p.ID, prefix); err != nil {
			e.logger.Error("failed to schedule asset purge",
				zap.String("project_id", p.ID),
				zap.String("prefix", prefix),
				zap.Error(err),
			)
		}
	}
	e.say(ctx, ev.ChatID, fmt.Sprintf("Проект %q успешно удалён.", p.Name))
	return nil
}

func startProject(e *Engine, ctx context.Context, ev Event, _ models.Role, _ []string) error {
	return e.begin(ctx, ev.ChatID, &models.Session{
		Step:    models.StepProjectName,
		Project: &models.ProjectDraft{},
	})
}

func projectName(_ *Engine, _ context.Context, s *models.Session, ev Event) (result, error) {
	name, ok := ev.text()
	if !ok {
		return resultStay, invalid("")
	}
	s.Project.Name = name
	s.Step = models.StepProjectPhotos
	return resultAdvance, nil
}

// projectPhotos uploads each photo or image document until the done token arrives.
func projectPhotos(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	if text, ok := ev.text(); ok {
		if !strings.EqualFold(text, doneToken) {
			return resultStay, invalid("")
		}
		s.Step = models.StepProjectDescription
		return resultAdvance, nil
	}
	if (ev.Kind != KindPhoto && ev.Kind != KindDocument) || ev.File == nil {
		return resultStay, invalid("")
	}

	source, err := e.msg.FileURL(ctx, ev.File.ID)
	if err != nil {
		return resultDone, failWith("Ошибка при загрузке фото. Начните заново.", err)
	}
	url, err := e.storage.Upload(ctx, source, storage.ProjectFolder(s.Project.Name), storage.ResourceImage)
	if err != nil {
		return resultDone, failWith("Ошибка при загрузке фото. Начните заново.", err)
	}
	s.Project.Photos = append(s.Project.Photos, url)
	if err := e.sessions.Set(ctx, ev.ChatID, s); err != nil {
		return resultDone, err
	}
	e.say(ctx, ev.ChatID, "Фото загружено. Отправьте следующее фото или введите 'готово'.")
	return resultStay, nil
}

// projectDescription accepts a document (stored by URL) or free text, then saves the project.
func projectDescription(e *Engine, ctx context.Context, s *models.Session, ev Event) (result, error) {
	switch {
	case ev.Kind == KindDocument && ev.File != nil:
		source, err := e.msg.FileURL(ctx, ev.File.ID)
		if err != nil {
			return resultDone, failWith("Ошибка при загрузке описания.", err)
		}
		url, err := e.storage.Upload(ctx, source, storage.ProjectFolder(s.Project.Name), storage.ResourceRaw)
		if err != nil {
			return resultDone, failWith("Ошибка при загрузке описания.", err)
		}
		s.Project.DescriptionURL = url
	case ev.Kind == KindText:
		text, ok := ev.text()
		if !ok {
			return resultStay, invalid("")
		}
		s.Project.Description = text
	default:
		return resultStay, invalid("")
	}

	p := &models.Project{
		Name:           s.Project.Name,
		Photos:         s.Project.Photos,
		Description:    s.Project.Description,
		DescriptionURL: s.Project.DescriptionURL,
	}
	if err := e.projects.Create(ctx, p); err != nil {
		return resultDone, failWith("Ошибка при сохранении проекта.", err)
	}
	e.say(ctx, ev.ChatID, "Проект успешно добавлен в базу данных!")
	return resultDone, nil
}
