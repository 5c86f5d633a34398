package domain

import (
	"time"

	"github.com/trabach-softwares/ouro-rifa-api/internal/entity"
	"github.com/trabach-softwares/ouro-rifa-api/internal/model"
)

const defaultTimeLayout string = time.RFC3339Nano

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(defaultTimeLayout)
}

func convertUser(user *entity.User) model.User {
	if user == nil {
		return model.User{}
	}

	return model.User{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Phone:        user.Phone,
		Role:         string(user.Role),
		IsActive:     user.IsActive,
		TotalSpent:   user.TotalSpent,
		LastPurchase: formatTime(user.LastPurchase),
		LastLogin:    formatTime(user.LastLogin),
		PaymentSettings: model.PaymentSettings{
			PixKey:      user.PaymentSettings.PixKey,
			BankName:    user.PaymentSettings.BankName,
			Agency:      user.PaymentSettings.Agency,
			Account:     user.PaymentSettings.Account,
			AccountType: user.PaymentSettings.AccountType,
		},
		NotificationSettings: model.NotificationSettings{
			EmailNewPurchase:    user.NotificationSettings.EmailNewPurchase,
			EmailRaffleComplete: user.NotificationSettings.EmailRaffleComplete,
			SmsNewPurchase:      user.NotificationSettings.SmsNewPurchase,
			SmsRaffleComplete:   user.NotificationSettings.SmsRaffleComplete,
			PushNotifications:   user.NotificationSettings.PushNotifications,
		},
	}
}

func convertShortUser(user *entity.User) model.ShortUser {
	if user == nil {
		return model.ShortUser{}
	}

	return model.ShortUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Phone: user.Phone,
	}
}

func convertRaffle(raffle *entity.Raffle, owner *entity.User, winner *entity.User) model.Raffle {
	if raffle == nil {
		return model.Raffle{}
	}

	result := model.Raffle{
		ID:                  raffle.ID,
		Title:               raffle.Title,
		Description:         raffle.Description,
		Image:               raffle.Image,
		Category:            raffle.Category,
		TicketPrice:         raffle.TicketPrice,
		TotalTickets:        raffle.TotalTickets,
		SoldTickets:         raffle.SoldTickets,
		Revenue:             raffle.Revenue,
		Status:              string(raffle.Status),
		Owner:               convertShortUser(owner),
		WinnerTicket:        raffle.WinnerTicket,
		StartDate:           formatTime(raffle.StartDate),
		MaxTicketsPerPerson: raffle.MaxTicketsPerPerson,
	}

	if winner != nil {
		shortWinner := convertShortUser(winner)
		result.Winner = &shortWinner
	}

	if raffle.DrawDate.Valid {
		result.DrawDate = formatTime(raffle.DrawDate.Time)
	}

	if raffle.EndDate.Valid {
		result.EndDate = formatTime(raffle.EndDate.Time)
	}

	return result
}

func convertRaffleSummary(raffle *entity.Raffle) model.RaffleSummary {
	if raffle == nil {
		return model.RaffleSummary{}
	}

	return model.RaffleSummary{
		ID:     raffle.ID,
		Title:  raffle.Title,
		Image:  raffle.Image,
		Status: string(raffle.Status),
	}
}

func convertTicket(ticket *entity.Ticket) model.Ticket {
	if ticket == nil {
		return model.Ticket{}
	}

	result := model.Ticket{
		ID:            ticket.ID,
		RaffleID:      ticket.RaffleID,
		UserID:        ticket.UserID,
		TicketNumbers: ticket.TicketNumbers,
		Quantity:      ticket.Quantity,
		TotalAmount:   ticket.TotalAmount,
		PaymentStatus: string(ticket.PaymentStatus),
		PaymentMethod: ticket.PaymentMethod,
		TransactionID: ticket.TransactionID,
		IsWinner:      ticket.IsWinner,
	}

	if ticket.PaymentDate.Valid {
		result.PaymentDate = formatTime(ticket.PaymentDate.Time)
	}

	return result
}

func convertPayment(payment *entity.Payment) model.Payment {
	if payment == nil {
		return model.Payment{}
	}

	result := model.Payment{
		ID:            payment.ID,
		TicketID:      payment.TicketID,
		UserID:        payment.UserID,
		RaffleID:      payment.RaffleID,
		Amount:        payment.Amount,
		Method:        payment.Method,
		Status:        string(payment.Status),
		TransactionID: payment.TransactionID,
		PixData:       payment.PixData,
	}

	if payment.ProcessedAt.Valid {
		result.ProcessedAt = formatTime(payment.ProcessedAt.Time)
	}

	return result
}
