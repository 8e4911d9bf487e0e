package services

import (
	"errors"

	"gym_checkin_backend/internal/models"
)

// Front-desk messages are shown to members as-is, Chinese first.
const (
	msgNewMember = "新会员签到成功！请联系管理员办理会员卡。\n\nNew member check-in successful! Please contact admin to purchase membership card."

	msgMonthlyRegular = "签到成功！祝您训练愉快！\nCheck-in successful! Enjoy your training!"
	msgGroupRegular   = "签到成功！课时已扣除。祝您训练愉快！\nCheck-in successful! Session deducted. Enjoy your training!"
	msgGroupExtra     = "团课额外签到成功，请及时办理会员卡。\nGroup class extra check-in successful, please purchase a membership card."
	msgPrivateRegular = "私教课签到成功！课时已扣除。\n祝您训练愉快！\n\nPrivate class check-in successful! Session deducted.\nEnjoy your training!"
	msgPrivateExtra   = "私教课额外签到成功，请及时办理私教卡。\nPrivate training extra check-in successful, please purchase a private training card."
	msgKidsRegular    = "儿童团课签到成功！课时已扣除。\nKids group class check-in successful! Session deducted."
	msgKidsExtra      = "儿童团课额外签到成功！\nKids group class extra check-in successful!"

	msgNeedsEmail    = "存在多个同名会员，请输入邮箱以确认身份。\n\nSeveral members share this name, please enter your email to continue."
	msgNameConflict  = "会员已存在，请前往会员签到页面。\n\nMember already exists, please go to member check-in page."
	msgEmailConflict = "该邮箱已被其他会员使用，请前往会员签到页面。\n\nThis email already belongs to a member, please go to member check-in page."
)

func checkInMessage(cat models.ClassCategory, isExtra, deducted, isNewMember bool) string {
	if isNewMember {
		return msgNewMember
	}
	if !isExtra && !deducted {
		return msgMonthlyRegular
	}
	switch cat {
	case models.ClassPrivate:
		if isExtra {
			return msgPrivateExtra
		}
		return msgPrivateRegular
	case models.ClassKidsGroup:
		if isExtra {
			return msgKidsExtra
		}
		return msgKidsRegular
	}
	if isExtra {
		return msgGroupExtra
	}
	return msgGroupRegular
}

// MessageFor returns the member-facing text for identity conflicts, or ""
// when err has none.
func MessageFor(err error) string {
	switch {
	case errors.Is(err, ErrAmbiguousMember):
		return msgNeedsEmail
	case errors.Is(err, ErrNameConflict):
		return msgNameConflict
	case errors.Is(err, ErrEmailConflict):
		return msgEmailConflict
	}
	return ""
}
