package handler

import (
	"github.com/dtroode/themekeeper/internal/api/grpc/adminapi"
	"github.com/dtroode/themekeeper/internal/model"
	"github.com/dtroode/themekeeper/internal/service"
)

func themeToAPI(theme model.Theme) adminapi.Theme {
	return adminapi.Theme{
		Key:      theme.Key,
		Title:    theme.Title,
		Theory:   theme.Theory,
		Examples: theme.Examples,
	}
}

func themeListToAPI(result service.FilterResult, revision int64, notice *model.Notice) adminapi.ThemeList {
	themes := make([]adminapi.Theme, 0, len(result.Themes))
	for _, theme := range result.Themes {
		themes = append(themes, themeToAPI(theme))
	}

	list := adminapi.ThemeList{
		Query:     result.Query,
		Themes:    themes,
		Loaded:    result.Loaded,
		NoResults: result.NoResults,
		Revision:  revision,
	}
	if notice != nil {
		list.Notice = notice.Message
	}
	return list
}

func userToAPI(user model.UserAccount) adminapi.User {
	return adminapi.User{
		UID:         user.UID,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		Role:        user.RoleOrDefault(),
		DisplayName: service.DisplayName(user),
	}
}

func userCardToAPI(card service.UserCard) adminapi.UserCard {
	return adminapi.UserCard{
		UID:          card.UID,
		FullName:     card.FullName,
		Email:        card.Email,
		Role:         card.Role,
		PasswordNote: card.PasswordNote,
		DeletionNote: card.DeletionNote,
	}
}
