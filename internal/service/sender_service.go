package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"osteria/internal/entities"
)

type SenderService struct {
}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func restaurantLocation() *time.Location {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		return time.FixedZone("CET", 1*60*60)
	}
	return loc
}

func (s *SenderService) SendReservationEmail(reservation entities.ReservationResponse, status string) {
	loc := restaurantLocation()

	dateFormatted := reservation.ReservationDate
	if t, err := time.Parse("2006-01-02", reservation.ReservationDate); err == nil {
		dateFormatted = t.Format("02 Jan 2006")
	}

	emailData := entities.ReservationEmailData{
		GuestName:       reservation.GuestFirstName + " " + reservation.GuestLastName,
		ReservationCode: reservation.Code,
		DateFormatted:   dateFormatted,
		TimeFormatted:   reservation.SlotStartTime + " - " + reservation.SlotEndTime,
		GuestCount:      reservation.GuestCount,
		Status:          status,
		CurrentYear:     time.Now().In(loc).Year(),
	}

	emailSubject := fmt.Sprintf("Your Osteria reservation is %s - Code: %s", status, emailData.ReservationCode)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\nYour reservation at Osteria is %s.\n\n"+
			"Reservation Details:\n"+
			"Reservation Code: %s\n"+
			"Date: %s\n"+
			"Time: %s\n"+
			"Guests: %d\n\n"+
			"Thank you for choosing Osteria.\n\n"+
			"Osteria. All rights reserved.",
		emailData.GuestName, status, emailData.ReservationCode,
		emailData.DateFormatted, emailData.TimeFormatted, emailData.GuestCount,
	)

	tmplPath := filepath.Join("internal", "templates", "reservation_email.html")
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		log.Printf("ALERT: error parsing reservation email template (%s): %v", tmplPath, err)
		return
	}

	var htmlBodyBuffer bytes.Buffer
	if err := tmpl.Execute(&htmlBodyBuffer, emailData); err != nil {
		log.Printf("ALERT: error executing reservation email template for %s: %v", emailData.ReservationCode, err)
	}
	htmlBody := htmlBodyBuffer.String()

	go func(toEmail, guestName, subject, plainBody, htmlBodyContent string) {
		errEmail := SendEmailWithSendGrid(toEmail, guestName, subject, plainBody, htmlBodyContent)
		if errEmail != nil {
			log.Printf("ALERT (async): email for reservation %s failed: %v", emailData.ReservationCode, errEmail)
		}
	}(reservation.GuestEmail, emailData.GuestName, emailSubject, plainTextBody, htmlBody)
}

func (s *SenderService) SendReservationSMS(reservation entities.ReservationResponse, status string) {
	dateFormatted := reservation.ReservationDate
	if t, err := time.Parse("2006-01-02", reservation.ReservationDate); err == nil {
		dateFormatted = t.Format("02/01")
	}

	smsMessage := fmt.Sprintf("Osteria: Reservation %s has been %s!\nTable for %d on %s at %s.\nMore details in your email.",
		reservation.Code, status,
		reservation.GuestCount, dateFormatted, reservation.SlotStartTime,
	)

	errSMS := SendSMS(reservation.GuestPhone, smsMessage)
	if errSMS != nil {
		log.Printf("ALERT: reservation %s was processed, but the confirmation SMS to %s failed: %v", reservation.Code, reservation.GuestPhone, errSMS)
	}
}
